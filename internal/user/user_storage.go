package user

import (
	"context"

	"github.com/VitaminP8/blogd/internal/model"
)

// UserStorage хранит учетные данные. Уникальность username обеспечивает само
// хранилище (уникальный индекс или одна критическая секция), а не проверка перед вставкой.
type UserStorage interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	InsertUser(ctx context.Context, user *model.User) (string, error)
}
