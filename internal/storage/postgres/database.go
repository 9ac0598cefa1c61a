package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/VitaminP8/blogd/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/lib/pq"
)

// InitDB подключается к PostgreSQL по DSN.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return db, nil
}

// Migrate создает таблицы. Внешние ключи добавляются только в postgres:
// sqlite, на котором гоняются тесты, не умеет ALTER TABLE ADD CONSTRAINT.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}).Error
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if db.Dialect().GetName() != "postgres" {
		return nil
	}

	fks := []struct {
		model      interface{}
		field, ref string
	}{
		{&models.Post{}, "user_id", "users(id)"},
		{&models.Comment{}, "user_id", "users(id)"},
		{&models.Comment{}, "post_id", "posts(id)"},
	}
	for _, fk := range fks {
		err = db.Model(fk.model).AddForeignKey(fk.field, fk.ref, "RESTRICT", "RESTRICT").Error
		if err != nil && !isDuplicateObject(err) {
			return fmt.Errorf("failed to add foreign key %s: %w", fk.field, err)
		}
	}
	return nil
}

// CloseDB закрывает соединение с базой данных
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}
	return nil
}

// parseID переводит строковый id в первичный ключ. Некорректный id не может
// существовать в таблице, поэтому это ErrNotFound.
func parseID(kind, id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s with ID %q: %w", kind, id, model.ErrNotFound)
	}
	return uint(n), nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isDuplicateObject(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42710"
}
