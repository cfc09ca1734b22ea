package repository

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	History(ctx context.Context, channel string, limit int) ([]models.ChatMessage, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateChatHistory(ctx, msg.Channel)
	return nil
}

// History returns the latest messages of the channel, newest first.
func (r *chatRepository) History(ctx context.Context, channel string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	key := cache.ChatHistoryKey(channel)

	err := cache.Aside(ctx, key, &messages, cache.ChatHistoryTTL, func() error {
		return readDB(r.db).WithContext(ctx).
			Where("channel = ?", channel).
			Order("created_at DESC").
			Limit(limit).
			Find(&messages).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return messages, nil
}
