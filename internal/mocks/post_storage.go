package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/blogd/internal/model"
)

// MockPostStorage не проверяет автора, только поля поста.
type MockPostStorage struct {
	mu    sync.Mutex
	posts map[string]*model.Post
	Err   error
}

func NewMockPostStorage() *MockPostStorage {
	return &MockPostStorage{
		posts: make(map[string]*model.Post),
	}
}

func (m *MockPostStorage) CreatePost(ctx context.Context, p *model.Post) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	id := strconv.Itoa(len(m.posts) + 1)
	post := &model.Post{
		ID:         id,
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		CommentIDs: []string{},
		CreatedAt:  time.Now().UTC(),
	}
	m.posts[id] = post
	cp := *post
	return &cp, nil
}

func (m *MockPostStorage) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with ID %s: %w", id, model.ErrNotFound)
	}
	cp := *post
	return &cp, nil
}

func (m *MockPostStorage) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := make([]*model.Post, 0, len(m.posts))
	for i := len(m.posts); i >= 1; i-- {
		cp := *m.posts[strconv.Itoa(i)]
		posts = append(posts, &cp)
	}
	return posts, nil
}
