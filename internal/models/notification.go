package models

import "time"

// Notification types recorded by the social-action hooks.
const (
	NotiTypeFollow  = "started following you"
	NotiTypeLike    = "liked your post"
	NotiTypeShare   = "shared your post"
	NotiTypeComment = "commented on your post"
)

// Notification is a derived event recorded when one user's action affects
// another user's content. Created only through the action hooks; the read
// flag is the only mutable field.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Type       string    `gorm:"size:40;not null" json:"type"`
	FromUserID uint      `gorm:"not null;index" json:"from_user_id"`
	ToUserID   uint      `gorm:"not null;index:idx_noti_recipient" json:"to_user_id"`
	PostID     *uint     `json:"post_id,omitempty"`
	CommentID  *uint     `json:"comment_id,omitempty"`
	IsRead     bool      `gorm:"default:false;index:idx_noti_recipient" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`

	FromUser User     `gorm:"foreignKey:FromUserID" json:"-"`
	ToUser   User     `gorm:"foreignKey:ToUserID" json:"-"`
	Post     *Post    `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Comment  *Comment `gorm:"foreignKey:CommentID" json:"-"`

	// Sender/recipient projections; selected via join aliases.
	FromUsername string `gorm:"->;-:migration" json:"from_user"`
	ToUsername   string `gorm:"->;-:migration" json:"to_user"`
	Avatar       string `gorm:"->;-:migration" json:"avatar"`
}
