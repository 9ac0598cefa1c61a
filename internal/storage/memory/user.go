package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/google/uuid"
)

type UserMemoryStorage struct {
	mu         sync.Mutex
	byUsername map[string]*model.User
	byID       map[string]*model.User
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		byUsername: make(map[string]*model.User),
		byID:       make(map[string]*model.User),
	}
}

// InsertUser проверяет и вставляет под одним мьютексом, поэтому две
// одновременные регистрации с одним username не могут пройти обе.
func (s *UserMemoryStorage) InsertUser(ctx context.Context, user *model.User) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return "", fmt.Errorf("user %s: %w", user.Username, model.ErrDuplicateUsername)
	}

	stored := *user
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	s.byUsername[stored.Username] = &stored
	s.byID[stored.ID] = &stored

	return stored.ID, nil
}

func (s *UserMemoryStorage) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.byUsername[username]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", username, model.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *UserMemoryStorage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.byID[id]
	if !exists {
		return nil, fmt.Errorf("user with ID %s: %w", id, model.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}
