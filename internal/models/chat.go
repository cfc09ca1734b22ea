package models

import "time"

// MaxChatMessageLen is the maximum length of a chat message body.
const MaxChatMessageLen = 50

// ChatMessage is a persisted chat frame. Sender and channel are denormalized
// text, not foreign keys: history survives account deletion and the channel
// name is the only grouping key.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Message   string    `gorm:"size:50;not null" json:"message"`
	Channel   string    `gorm:"size:120;not null;index" json:"canal"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ChatMessage) TableName() string {
	return "chat_messages"
}
