package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/VitaminP8/blogd/internal/model"
)

// MockUserStorage реализует интерфейс user.UserStorage для тестирования.
// Если задан Err, каждый метод возвращает его.
type MockUserStorage struct {
	mu     sync.Mutex
	users  map[string]*model.User // username -> user
	nextID int
	Err    error
}

// NewMockUserStorage создает новый экземпляр мока для хранилища пользователей
func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:  make(map[string]*model.User),
		nextID: 1,
	}
}

func (m *MockUserStorage) InsertUser(ctx context.Context, u *model.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if _, exists := m.users[u.Username]; exists {
		return "", fmt.Errorf("user %s: %w", u.Username, model.ErrDuplicateUsername)
	}

	stored := *u
	stored.ID = strconv.Itoa(m.nextID)
	m.nextID++
	m.users[u.Username] = &stored

	return stored.ID, nil
}

func (m *MockUserStorage) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	u, exists := m.users[username]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", username, model.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with ID %s: %w", id, model.ErrNotFound)
}
