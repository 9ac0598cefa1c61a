// Package model содержит доменные записи, общие для всех хранилищ.
package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLength   = 200
	MaxCommentLength = 2000
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // наружу не отдаем
	CreatedAt    time.Time `json:"created_at"`
}

type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	CommentIDs []string  `json:"comment_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate проверяет поля, которые задает клиент.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(p.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title is too long", ErrValidation)
	}
	if p.AuthorID == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	return nil
}

func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(c.Content) > MaxCommentLength {
		return fmt.Errorf("%w: content is too long", ErrValidation)
	}
	if c.AuthorID == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	if c.PostID == "" {
		return fmt.Errorf("%w: post is required", ErrValidation)
	}
	return nil
}
