// Package models описывает таблицы для gorm. Связи хранятся как внешние ключи,
// список комментариев поста получается отдельным запросом.
package models

import "github.com/jinzhu/gorm"

type User struct {
	gorm.Model
	Username     string `gorm:"type:varchar(255);unique_index;not null"`
	PasswordHash string `gorm:"not null"`
}

type Post struct {
	gorm.Model
	Title        string `gorm:"type:varchar(255);not null"`
	Content      string `gorm:"type:text"`
	UserID       uint   `gorm:"index;not null"`
	CommentCount int    `gorm:"not null;default:0"`
}

type Comment struct {
	gorm.Model
	Content string `gorm:"type:text;not null"`
	PostID  uint   `gorm:"index;not null"`
	UserID  uint   `gorm:"not null"`
}
