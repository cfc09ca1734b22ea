package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"ripple/internal/models"
	"ripple/internal/notifications"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

// ActionHooks is the notification side-effect pipeline. Every social action
// that may notify another user goes through exactly one hook here; nothing
// else creates notification rows.
type ActionHooks interface {
	UserFollowed(ctx context.Context, actor, target *models.User) (*models.Notification, error)
	PostLiked(ctx context.Context, actorID uint, post *models.Post) error
	PostShared(ctx context.Context, actorID uint, post *models.Post) error
	PostCommented(ctx context.Context, actorID uint, post *models.Post, commentID uint) error
}

// NotificationService serves the notification feed and implements ActionHooks.
type NotificationService struct {
	notiRepo repository.NotificationRepository
	notifier *notifications.Notifier
}

// NewNotificationService returns a new NotificationService. The notifier is
// optional; without it notifications are persisted but not pushed live.
func NewNotificationService(
	notiRepo repository.NotificationRepository,
	notifier *notifications.Notifier,
) *NotificationService {
	return &NotificationService{notiRepo: notiRepo, notifier: notifier}
}

// ListRead returns the recipient's already-read notifications, newest first.
func (s *NotificationService) ListRead(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	return s.notiRepo.ListByRecipient(ctx, userID, true, limit, offset)
}

// ListUnread returns the recipient's unread notifications, newest first.
// Together with ListRead this partitions the recipient's notifications.
func (s *NotificationService) ListUnread(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	return s.notiRepo.ListByRecipient(ctx, userID, false, limit, offset)
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notiRepo.CountUnread(ctx, userID)
}

// MarkAllRead marks every unread notification as read and reports how many
// rows changed. A second call is a no-op success with updated=0.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.notiRepo.MarkAllRead(ctx, userID)
}

// record persists a notification unless actor and recipient are the same
// user. Users never get notified about their own actions.
func (s *NotificationService) record(ctx context.Context, noti *models.Notification) (*models.Notification, error) {
	if noti.FromUserID == noti.ToUserID {
		return nil, nil
	}
	if err := s.notiRepo.Create(ctx, noti); err != nil {
		return nil, err
	}
	observability.RecordNotification(noti.Type)
	s.push(ctx, noti)
	return noti, nil
}

// push sends the notification to the recipient's live channel. Delivery is
// best effort; a failed push never fails the action that produced it.
func (s *NotificationService) push(ctx context.Context, noti *models.Notification) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(noti)
	if err != nil {
		return
	}
	if err := s.notifier.PublishUser(ctx, noti.ToUserID, string(payload)); err != nil {
		slog.WarnContext(ctx, "notification push failed",
			slog.Uint64("to_user_id", uint64(noti.ToUserID)),
			slog.String("error", err.Error()))
	}
}

// UserFollowed records a "started following you" notification and returns it
// with the sender/recipient projection filled in, since the follow endpoint
// echoes the notification back to the caller.
func (s *NotificationService) UserFollowed(ctx context.Context, actor, target *models.User) (*models.Notification, error) {
	noti, err := s.record(ctx, &models.Notification{
		Type:       models.NotiTypeFollow,
		FromUserID: actor.ID,
		ToUserID:   target.ID,
	})
	if err != nil || noti == nil {
		return nil, err
	}
	noti.FromUsername = actor.Username
	noti.ToUsername = target.Username
	noti.Avatar = actor.Avatar
	return noti, nil
}

// recordDeduped persists the notification unless an identical unread one is
// already waiting for the recipient, so like/unlike cycling cannot flood a
// feed with duplicates.
func (s *NotificationService) recordDeduped(ctx context.Context, noti *models.Notification) error {
	if noti.FromUserID == noti.ToUserID {
		return nil
	}
	exists, err := s.notiRepo.ExistsUnread(ctx, noti.Type, noti.FromUserID, noti.ToUserID, noti.PostID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.record(ctx, noti)
	return err
}

// PostLiked records a "liked your post" notification addressed to the author.
func (s *NotificationService) PostLiked(ctx context.Context, actorID uint, post *models.Post) error {
	return s.recordDeduped(ctx, &models.Notification{
		Type:       models.NotiTypeLike,
		FromUserID: actorID,
		ToUserID:   post.UserID,
		PostID:     &post.ID,
	})
}

// PostShared records a "shared your post" notification addressed to the author.
func (s *NotificationService) PostShared(ctx context.Context, actorID uint, post *models.Post) error {
	return s.recordDeduped(ctx, &models.Notification{
		Type:       models.NotiTypeShare,
		FromUserID: actorID,
		ToUserID:   post.UserID,
		PostID:     &post.ID,
	})
}

// PostCommented records a "commented on your post" notification addressed to
// the author.
func (s *NotificationService) PostCommented(ctx context.Context, actorID uint, post *models.Post, commentID uint) error {
	_, err := s.record(ctx, &models.Notification{
		Type:       models.NotiTypeComment,
		FromUserID: actorID,
		ToUserID:   post.UserID,
		PostID:     &post.ID,
		CommentID:  &commentID,
	})
	return err
}
