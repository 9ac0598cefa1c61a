package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/VitaminP8/blogd/models"
	"github.com/jinzhu/gorm"
)

type PostPostgresStorage struct {
	db *gorm.DB
}

func NewPostPostgresStorage(db *gorm.DB) *PostPostgresStorage {
	return &PostPostgresStorage{db: db}
}

func (s *PostPostgresStorage) CreatePost(ctx context.Context, p *model.Post) (*model.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	authorID, err := parseID("user", p.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := &models.Post{
		Title:   p.Title,
		Content: p.Content,
		UserID:  authorID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, authorID); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("could not create post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toPost(row, []string{}), nil
}

func (s *PostPostgresStorage) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	pid, err := parseID("post", id)
	if err != nil {
		return nil, err
	}

	var row models.Post
	err = s.db.First(&row, pid).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("post with ID %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get post by id: %w", err)
	}

	var commentIDs []uint
	err = s.db.Model(&models.Comment{}).Where("post_id = ?", pid).Order("id asc").Pluck("id", &commentIDs).Error
	if err != nil {
		return nil, fmt.Errorf("could not get post comments: %w", err)
	}

	return toPost(&row, formatIDs(commentIDs)), nil
}

// GetAllPosts возвращает посты от новых к старым; id комментариев добираются одним запросом.
func (s *PostPostgresStorage) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	var rows []models.Post
	err := s.db.Order("id desc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get posts: %w", err)
	}
	if len(rows) == 0 {
		return []*model.Post{}, nil
	}

	postIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		postIDs = append(postIDs, r.ID)
	}

	var refs []models.Comment
	err = s.db.Select("id, post_id").Where("post_id IN (?)", postIDs).Order("id asc").Find(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("could not get post comments: %w", err)
	}

	byPost := make(map[uint][]string, len(rows))
	for _, c := range refs {
		byPost[c.PostID] = append(byPost[c.PostID], formatID(c.ID))
	}

	results := make([]*model.Post, 0, len(rows))
	for i := range rows {
		ids := byPost[rows[i].ID]
		if ids == nil {
			ids = []string{}
		}
		results = append(results, toPost(&rows[i], ids))
	}
	return results, nil
}

func requireUser(tx *gorm.DB, id uint) error {
	err := tx.Select("id").First(&models.User{}, id).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return fmt.Errorf("author with ID %d: %w", id, model.ErrNotFound)
		}
		return fmt.Errorf("could not check author: %w", err)
	}
	return nil
}

func toPost(row *models.Post, commentIDs []string) *model.Post {
	return &model.Post{
		ID:         formatID(row.ID),
		Title:      row.Title,
		Content:    row.Content,
		AuthorID:   formatID(row.UserID),
		CommentIDs: commentIDs,
		CreatedAt:  row.CreatedAt,
	}
}

func formatIDs(ids []uint) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, formatID(id))
	}
	return out
}
