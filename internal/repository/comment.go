package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// applyCommentDetails joins the author row for username/avatar aliases.
func (r *commentRepository) applyCommentDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Comment{}).
		Select("comments.*, users.username AS username, users.avatar AS avatar").
		Joins("JOIN users ON users.id = comments.user_id")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.applyCommentDetails(readDB(r.db).WithContext(ctx)).
		Where("comments.id = ?", id).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(readDB(r.db).WithContext(ctx)).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("body", comment.Body).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
