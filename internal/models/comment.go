package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentBodyLen is the maximum length of a comment body.
const MaxCommentBodyLen = 140

// Comment represents a reply attached to a post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	PostID    uint           `gorm:"not null;index" json:"post"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Post      Post           `gorm:"foreignKey:PostID" json:"-"`
	Body      string         `gorm:"size:140;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Username and Avatar mirror the author row; selected via join aliases.
	Username string `gorm:"->;-:migration" json:"user"`
	Avatar   string `gorm:"->;-:migration" json:"avatar"`
}
