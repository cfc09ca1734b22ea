package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

// Pagination bounds for post listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostService provides post CRUD and the like/share toggle sets.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	notiRepo repository.NotificationRepository
	hooks    ActionHooks
	isStaff  func(ctx context.Context, userID uint) (bool, error)
}

// CreatePostInput is the input for creating a post. The author is always the
// authenticated caller.
type CreatePostInput struct {
	UserID  uint
	Content string
	Image   string
}

// UpdatePostInput is the input for editing a post.
type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
	Image   *string
}

// NewPostService returns a new PostService. isStaff gates the staff override
// on deletes; a nil func means no override.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notiRepo repository.NotificationRepository,
	hooks ActionHooks,
	isStaff func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		notiRepo: notiRepo,
		hooks:    hooks,
		isStaff:  isStaff,
	}
}

// normalizePage clamps limit/offset to sane bounds.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CreatePost validates and stores a new post, then reloads it with the
// author projection and live counts.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateLength("Content", in.Content, models.MaxPostContentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		UserID:  in.UserID,
		Content: in.Content,
		Image:   in.Image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ListPosts returns all posts newest first with live counts relative to the
// current user.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	limit, offset = normalizePage(limit, offset)
	return s.postRepo.List(ctx, limit, offset, currentUserID)
}

// GetPost returns a single post or a not-found error.
func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

// UpdatePost edits a post. Only the author may edit; staff have no override
// here.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}
	if err := validation.ValidateLength("Content", in.Content, models.MaxPostContentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post.Content = in.Content
	if in.Image != nil {
		post.Image = *in.Image
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

// DeletePost removes a post and its derived notifications. The author may
// always delete; staff may delete any post.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		staff := false
		if s.isStaff != nil {
			staff, err = s.isStaff(ctx, userID)
			if err != nil {
				return err
			}
		}
		if !staff {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	// Notifications pointing at the post are meaningless once it is gone.
	return s.notiRepo.DeleteForPost(ctx, postID)
}

// ToggleLike flips the caller's membership in the post's liked set and
// returns the resulting state. Entering the set notifies the author;
// leaving it never does.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return false, err
	}

	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if !created {
		// Already in the set; this call is the unlike.
		if _, err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.hooks.PostLiked(ctx, userID, post); err != nil {
		return true, err
	}
	return true, nil
}

// ToggleShare flips membership in the post's shared set. Same contract as
// ToggleLike against an independent set.
func (s *PostService) ToggleShare(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return false, err
	}

	created, err := s.postRepo.Share(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if !created {
		if _, err := s.postRepo.Unshare(ctx, userID, postID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.hooks.PostShared(ctx, userID, post); err != nil {
		return true, err
	}
	return true, nil
}

// resolveUsername maps a username to its user or a not-found error.
func (s *PostService) resolveUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// PostsByUsername returns the named user's own posts, newest first.
func (s *PostService) PostsByUsername(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.postRepo.GetByAuthor(ctx, user.ID, limit, offset, currentUserID)
}

// LikedByUsername returns posts the named user has liked.
func (s *PostService) LikedByUsername(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.postRepo.GetLikedBy(ctx, user.ID, limit, offset, currentUserID)
}

// SharedByUsername returns posts the named user has shared.
func (s *PostService) SharedByUsername(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.postRepo.GetSharedBy(ctx, user.ID, limit, offset, currentUserID)
}
