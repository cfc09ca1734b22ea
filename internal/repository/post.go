// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	GetByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	GetLikedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	GetSharedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Share(ctx context.Context, userID, postID uint) (bool, error)
	Unshare(ctx context.Context, userID, postID uint) (bool, error)
	IsShared(ctx context.Context, userID, postID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.FeedKey())
	return nil
}

// applyPostDetails adds the author join and subqueries fetching counts and
// the requesting user's liked/shared membership in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, users.username AS username, users.avatar AS avatar, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM shares WHERE shares.post_id = posts.id) AS shares_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count"

	db = db.Model(&models.Post{}).Joins("JOIN users ON users.id = posts.user_id")

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked"+
			", EXISTS(SELECT 1 FROM shares WHERE shares.post_id = posts.id AND shares.user_id = ?) AS shared",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery + ", FALSE AS liked, FALSE AS shared")
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), currentUserID).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), currentUserID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), currentUserID).
		Where("posts.user_id = ?", authorID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetLikedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), currentUserID).
		Joins("JOIN likes ON likes.post_id = posts.id AND likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetSharedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), currentUserID).
		Joins("JOIN shares ON shares.post_id = posts.id AND shares.user_id = ?", userID).
		Order("shares.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{"content": post.Content, "image": post.Image}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// Like inserts the membership row if absent. Returns true when the user was
// newly added to the liked set.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	// INSERT ... ON CONFLICT DO NOTHING keeps the toggle race-free.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

// Unlike hard-deletes the membership row. Returns true when a row was removed.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Share mirrors Like against the shared set.
func (r *postRepository) Share(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO shares (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Unshare(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Share{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) IsShared(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Share{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
