package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/VitaminP8/blogd/internal/user"
)

// Service регистрирует пользователей, выдает и проверяет токены.
// Собственных блокировок нет: уникальность username обеспечивает хранилище.
type Service struct {
	users  user.UserStorage
	hasher *PasswordHasher
	tokens *TokenManager

	dummyOnce sync.Once
	dummyHash string
	dummyErr  error
}

// Session возвращается при успешном входе.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
}

func NewService(users user.UserStorage, hasher *PasswordHasher, tokens *TokenManager) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", model.ErrValidation)
	}
	if len(password) > MaxPasswordLength {
		return "", fmt.Errorf("%w: password must be at most %d bytes", model.ErrValidation, MaxPasswordLength)
	}

	hashed, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return "", err
	}

	id, err := s.users.InsertUser(ctx, &model.User{
		Username:     username,
		PasswordHash: hashed,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Login не различает "нет пользователя" и "неверный пароль": в обоих случаях
// выполняется одно сравнение bcrypt и возвращается ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return Session{}, err
		}
		if err := s.compareDummy(ctx, password); err != nil {
			return Session{}, err
		}
		return Session{}, model.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(ctx, u.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, model.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, UserID: u.ID}, nil
}

// Verify возвращает id пользователя, которому выдан токен.
func (s *Service) Verify(token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) compareDummy(ctx context.Context, password string) error {
	s.dummyOnce.Do(func() {
		s.dummyHash, s.dummyErr = s.hasher.Hash(context.Background(), "blogd-timing-equalizer")
	})
	if s.dummyErr != nil {
		return s.dummyErr
	}
	_, err := s.hasher.Compare(ctx, s.dummyHash, password)
	return err
}
