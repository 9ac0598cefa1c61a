package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/blogd/internal/model"
)

// MockCommentStorage хранит комментарии без проверки поста и автора.
type MockCommentStorage struct {
	mu       sync.Mutex
	comments map[string][]*model.Comment // postID -> комментарии
	nextID   int
	Err      error
}

func NewMockCommentStorage() *MockCommentStorage {
	return &MockCommentStorage{
		comments: make(map[string][]*model.Comment),
		nextID:   1,
	}
}

func (m *MockCommentStorage) CreateComment(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:        strconv.Itoa(m.nextID),
		Content:   c.Content,
		AuthorID:  c.AuthorID,
		PostID:    c.PostID,
		CreatedAt: time.Now().UTC(),
	}
	m.nextID++
	m.comments[c.PostID] = append(m.comments[c.PostID], comment)

	cp := *comment
	return &cp, nil
}

func (m *MockCommentStorage) GetComments(ctx context.Context, postID string, limit, offset int) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	all := m.comments[postID]
	if offset >= len(all) {
		return []*model.Comment{}, nil
	}
	end := len(all)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}

	items := make([]*model.Comment, 0, end-offset)
	for _, c := range all[offset:end] {
		cp := *c
		items = append(items, &cp)
	}
	return items, nil
}
