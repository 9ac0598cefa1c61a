package model

import "errors"

// Ошибки предметной области. Хранилища и сервисы оборачивают их через %w,
// HTTP-слой сопоставляет их со статусами в одном месте.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("not found")
)
