package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/VitaminP8/blogd/models"
	"github.com/jinzhu/gorm"
)

type UserPostgresStorage struct {
	db *gorm.DB
}

func NewUserPostgresStorage(db *gorm.DB) *UserPostgresStorage {
	return &UserPostgresStorage{db: db}
}

// InsertUser полагается на уникальный индекс по username: проверка и вставка
// делаются одной командой INSERT.
func (s *UserPostgresStorage) InsertUser(ctx context.Context, u *model.User) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	row := &models.User{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
	}

	err := s.db.Create(row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("user %s: %w", u.Username, model.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return formatID(row.ID), nil
}

func (s *UserPostgresStorage) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var row models.User
	err := s.db.Where("username = ?", username).First(&row).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("user %s: %w", username, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return toUser(&row), nil
}

func (s *UserPostgresStorage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	uid, err := parseID("user", id)
	if err != nil {
		return nil, err
	}

	var row models.User
	err = s.db.First(&row, uid).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("user with ID %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return toUser(&row), nil
}

func toUser(row *models.User) *model.User {
	return &model.User{
		ID:           formatID(row.ID),
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}
}
