package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/VitaminP8/blogd/internal/user"
)

type CommentMemoryStorage struct {
	mu       sync.Mutex
	comments map[string]*model.Comment
	byPost   map[string][]string // postID -> id комментариев в порядке создания
	nextID   int
	posts    *PostMemoryStorage
	users    user.UserStorage
}

func NewCommentMemoryStorage(posts *PostMemoryStorage, users user.UserStorage) *CommentMemoryStorage {
	return &CommentMemoryStorage{
		comments: make(map[string]*model.Comment),
		byPost:   make(map[string][]string),
		nextID:   1,
		posts:    posts,
		users:    users,
	}
}

func (s *CommentMemoryStorage) CreateComment(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, c.AuthorID); err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextID)

	// сначала привязываем к посту: если поста нет, комментарий не сохраняется.
	// Пока держим s.mu, GetComments не увидит промежуточного состояния.
	if err := s.posts.attachComment(c.PostID, id); err != nil {
		return nil, err
	}
	s.nextID++

	stored := &model.Comment{
		ID:        id,
		Content:   c.Content,
		AuthorID:  c.AuthorID,
		PostID:    c.PostID,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[id] = stored
	s.byPost[c.PostID] = append(s.byPost[c.PostID], id)

	cp := *stored
	return &cp, nil
}

// GetComments возвращает комментарии поста от старых к новым. При limit <= 0 без ограничения.
func (s *CommentMemoryStorage) GetComments(ctx context.Context, postID string, limit, offset int) ([]*model.Comment, error) {
	if !s.posts.exists(postID) {
		return nil, fmt.Errorf("post with ID %s: %w", postID, model.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byPost[postID]
	start, end := pageBounds(len(ids), limit, offset)

	result := make([]*model.Comment, 0, end-start)
	for _, id := range ids[start:end] {
		cp := *s.comments[id]
		result = append(result, &cp)
	}
	return result, nil
}

func pageBounds(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	// offset+limit может переполнить int
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	return offset, end
}
