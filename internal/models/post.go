package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxPostContentLen is the maximum length of a post body.
const MaxPostContentLen = 140

// Post represents a short post in the Ripple application.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"-"`
	Content string `gorm:"size:140;not null" json:"content"`
	Image   string `json:"image"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// SharesCount is not persisted; computed at query time
	SharesCount int `gorm:"->;-:migration" json:"shareds_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked / Shared indicate whether the requesting user is in the
	// respective set (computed)
	Liked     bool           `gorm:"->;-:migration" json:"liked"`
	Shared    bool           `gorm:"->;-:migration" json:"shared"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Username and Avatar mirror the author row; selected via join aliases.
	Username string `gorm:"->;-:migration" json:"user"`
	Avatar   string `gorm:"->;-:migration" json:"avatar"`
}

// Like represents a user's membership in a post's liked set.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`
}

// Share represents a user's membership in a post's shared set.
// Same contract as Like against a separate set.
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_share_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_share_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`
}
