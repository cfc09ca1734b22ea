package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

// CommentService provides comment CRUD under a parent post.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	hooks       ActionHooks
}

// CreateCommentInput is the input for commenting on a post.
type CreateCommentInput struct {
	UserID uint
	PostID uint
	Body   string
}

// UpdateCommentInput is the input for editing a comment.
type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Body      string
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	hooks ActionHooks,
) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, hooks: hooks}
}

// CreateComment validates and stores a comment on an existing post, then
// notifies the post's author.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("Body", in.Body, models.MaxCommentBodyLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		UserID: in.UserID,
		PostID: in.PostID,
		Body:   in.Body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.hooks.PostCommented(ctx, in.UserID, post, comment.ID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments newest first. Unknown posts are a
// not-found error, not an empty list.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

// GetComment returns a single comment or a not-found error.
func (s *CommentService) GetComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, commentID)
}

// UpdateComment edits a comment. Only the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only edit your own comments")
	}
	if err := validation.ValidateLength("Body", in.Body, models.MaxCommentBodyLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Body = in.Body
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, in.CommentID)
}

// DeleteComment removes a comment. Only the author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
