package repository

import (
	"context"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, noti *models.Notification) error
	ExistsUnread(ctx context.Context, notiType string, fromUserID, toUserID uint, postID *uint) (bool, error)
	ListByRecipient(ctx context.Context, userID uint, read bool, limit, offset int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	DeleteForPost(ctx context.Context, postID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, noti *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(noti).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ExistsUnread reports whether the recipient already has an identical unread
// notification. Used to keep toggle spam from flooding a recipient's feed.
func (r *notificationRepository) ExistsUnread(ctx context.Context, notiType string, fromUserID, toUserID uint, postID *uint) (bool, error) {
	var count int64
	q := readDB(r.db).WithContext(ctx).
		Model(&models.Notification{}).
		Where("type = ? AND from_user_id = ? AND to_user_id = ? AND is_read = ?",
			notiType, fromUserID, toUserID, false)
	if postID != nil {
		q = q.Where("post_id = ?", *postID)
	} else {
		q = q.Where("post_id IS NULL")
	}
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// applyNotiDetails joins sender and recipient rows for the serialized
// username/avatar aliases.
func (r *notificationRepository) applyNotiDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Notification{}).
		Select("notifications.*, senders.username AS from_username, recipients.username AS to_username, senders.avatar AS avatar").
		Joins("JOIN users AS senders ON senders.id = notifications.from_user_id").
		Joins("JOIN users AS recipients ON recipients.id = notifications.to_user_id")
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID uint, read bool, limit, offset int) ([]*models.Notification, error) {
	var notis []*models.Notification
	err := r.applyNotiDetails(readDB(r.db).WithContext(ctx)).
		Preload("Post").
		Where("notifications.to_user_id = ? AND notifications.is_read = ?", userID, read).
		Order("notifications.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notis).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notis, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkAllRead flips every unread notification to read and reports how many
// rows changed. Safe to call repeatedly; the second call updates nothing.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteForPost removes notifications that reference a deleted post.
func (r *notificationRepository) DeleteForPost(ctx context.Context, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Notification{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
