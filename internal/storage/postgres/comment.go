package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/VitaminP8/blogd/models"
	"github.com/jinzhu/gorm"
)

type CommentPostgresStorage struct {
	db *gorm.DB
}

func NewCommentPostgresStorage(db *gorm.DB) *CommentPostgresStorage {
	return &CommentPostgresStorage{db: db}
}

// CreateComment вставляет комментарий и увеличивает счетчик поста в одной транзакции.
func (s *CommentPostgresStorage) CreateComment(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	authorID, err := parseID("user", c.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	postID, err := parseID("post", c.PostID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := &models.Comment{
		Content: c.Content,
		PostID:  postID,
		UserID:  authorID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, authorID); err != nil {
			return err
		}

		// UPDATE заодно блокирует строку поста до конца транзакции
		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("could not attach comment to post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("post with ID %s: %w", c.PostID, model.ErrNotFound)
		}

		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("could not create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toComment(row), nil
}

func (s *CommentPostgresStorage) GetComments(ctx context.Context, postID string, limit, offset int) ([]*model.Comment, error) {
	pid, err := parseID("post", postID)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = s.db.Select("id").First(&post, pid).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("post with ID %s: %w", postID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get post: %w", err)
	}

	q := s.db.Where("post_id = ?", pid).Order("id asc")
	if limit <= 0 && offset > 0 {
		// sqlite не принимает OFFSET без LIMIT
		limit = math.MaxInt32
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var rows []models.Comment
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not get comments: %w", err)
	}

	results := make([]*model.Comment, 0, len(rows))
	for i := range rows {
		results = append(results, toComment(&rows[i]))
	}
	return results, nil
}

func toComment(row *models.Comment) *model.Comment {
	return &model.Comment{
		ID:        formatID(row.ID),
		Content:   row.Content,
		AuthorID:  formatID(row.UserID),
		PostID:    formatID(row.PostID),
		CreatedAt: row.CreatedAt,
	}
}
