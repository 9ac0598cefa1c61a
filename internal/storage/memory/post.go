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

type PostMemoryStorage struct {
	mu     sync.Mutex
	posts  map[string]*model.Post
	order  []string // id в порядке создания
	nextId int
	users  user.UserStorage
}

func NewPostMemoryStorage(users user.UserStorage) *PostMemoryStorage {
	return &PostMemoryStorage{
		posts:  make(map[string]*model.Post),
		nextId: 1,
		users:  users,
	}
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, p *model.Post) (*model.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, p.AuthorID); err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextId)
	s.nextId++

	stored := &model.Post{
		ID:         id,
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		CommentIDs: []string{},
		CreatedAt:  time.Now().UTC(),
	}

	s.posts[id] = stored
	s.order = append(s.order, id)

	return clonePost(stored), nil
}

func (s *PostMemoryStorage) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[id]
	if !exists {
		return nil, fmt.Errorf("post with ID %s: %w", id, model.ErrNotFound)
	}
	return clonePost(p), nil
}

// GetAllPosts возвращает посты от новых к старым.
func (s *PostMemoryStorage) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*model.Post, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		result = append(result, clonePost(s.posts[s.order[i]]))
	}
	return result, nil
}

// attachComment добавляет id комментария в пост. Вызывается из CommentMemoryStorage.
func (s *PostMemoryStorage) attachComment(postID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[postID]
	if !exists {
		return fmt.Errorf("post with ID %s: %w", postID, model.ErrNotFound)
	}
	p.CommentIDs = append(p.CommentIDs, commentID)
	return nil
}

func (s *PostMemoryStorage) exists(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.posts[postID]
	return ok
}

func clonePost(p *model.Post) *model.Post {
	cp := *p
	cp.CommentIDs = append([]string{}, p.CommentIDs...)
	return &cp
}
