package repository

import (
	"context"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	FollowedUsers(ctx context.Context, followerID uint) ([]models.UserSummary, error)
	FollowedIDs(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error)
	Recommend(ctx context.Context, userID uint, limit int) ([]models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the edge if absent. Returns true when a new edge was created.
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	// INSERT ... ON CONFLICT DO NOTHING keeps the toggle race-free.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (follower_id, followee_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Unfollow removes the edge. Returns true when an edge existed and was removed.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) FollowedUsers(ctx context.Context, followerID uint) ([]models.UserSummary, error) {
	var followed []models.UserSummary
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Select("users.username AS username, users.avatar AS avatar").
		Joins("JOIN users ON users.id = follows.followee_id").
		Where("follows.follower_id = ? AND users.deleted_at IS NULL", followerID).
		Order("users.username ASC").
		Scan(&followed).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return followed, nil
}

func (r *followRepository) FollowedIDs(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id IN ?", followerID, candidateIDs).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// Recommend returns users the given user does not follow yet, ordered by id
// so repeated calls are stable.
func (r *followRepository) Recommend(ctx context.Context, userID uint, limit int) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Where("id <> ?", userID).
		Where("id NOT IN (SELECT followee_id FROM follows WHERE follower_id = ?)", userID).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
