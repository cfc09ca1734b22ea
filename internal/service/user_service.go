package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RecommendLimit is the maximum number of users returned by Recommend.
const RecommendLimit = 5

// UserService provides account, profile and follow-graph business logic.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	hooks      ActionHooks
}

// RegisterInput is the input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
}

// UpdateProfileInput is the input for updating the caller's own profile.
type UpdateProfileInput struct {
	UserID     uint
	Name       *string
	Bio        *string
	Avatar     *string
	CoverImage *string
}

// NewUserService returns a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	hooks ActionHooks,
) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo, hooks: hooks}
}

// Register validates and creates a new account. Uniqueness is checked
// username first, then email format, then email uniqueness, so the caller
// always learns about the first problem in that order.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("A user with that username already exists")
	}

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	existing, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("A user with that email already exists")
	}

	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Name:     in.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email+password and returns the matching user. The
// error is the same whether the email is unknown or the password is wrong.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

// GetByID returns the user or a not-found error.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Profile builds the public profile projection for a username as seen by the
// requesting user: live follower/following counts, whether the requester
// follows them, and the list of users they follow.
func (s *UserService) Profile(ctx context.Context, username string, requesterID uint) (*models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	iFollow := false
	if requesterID != 0 && requesterID != user.ID {
		iFollow, err = s.followRepo.IsFollowing(ctx, requesterID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	followed, err := s.followRepo.FollowedUsers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Name:       user.Name,
		Bio:        user.Bio,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		DateJoined: user.CreatedAt,
		IFollow:    iFollow,
		Followers:  followers,
		Following:  following,
		Followed:   followed,
	}, nil
}

// UpdateProfile applies the provided fields to the caller's own row. Nil
// pointers leave the current value untouched, so PATCH and PUT share one path.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxNameLen = 255
	const maxBioLen = 255

	if in.Name != nil {
		if len(*in.Name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 255 characters)")
		}
		user.Name = *in.Name
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 255 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.CoverImage != nil {
		user.CoverImage = *in.CoverImage
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount soft-deletes the user row.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

// ToggleFollow flips the follow edge from the actor toward the named user.
// Following returns the recorded notification; unfollowing returns nil.
// Exactly one state flip happens per call.
func (s *UserService) ToggleFollow(ctx context.Context, actorID uint, username string) (*models.Notification, bool, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if target == nil {
		return nil, false, models.NewNotFoundError("User", username)
	}
	if target.ID == actorID {
		return nil, false, models.NewValidationError("You cannot follow yourself")
	}

	created, err := s.followRepo.Follow(ctx, actorID, target.ID)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Edge already existed; this call is an unfollow.
		if _, err := s.followRepo.Unfollow(ctx, actorID, target.ID); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, true, err
	}
	noti, err := s.hooks.UserFollowed(ctx, actor, target)
	if err != nil {
		return nil, true, err
	}
	return noti, true, nil
}

// Search matches usernames and names by case-insensitive substring. A
// missing or empty query yields an empty result set, never all users.
func (s *UserService) Search(ctx context.Context, requesterID uint, query string) ([]models.SearchResult, error) {
	if query == "" {
		return []models.SearchResult{}, nil
	}
	users, err := s.userRepo.Search(ctx, query, requesterID, 50)
	if err != nil {
		return nil, err
	}
	return s.withFollowFlags(ctx, requesterID, users)
}

// Recommend suggests users the requester does not follow yet, excluding the
// requester, capped at RecommendLimit.
func (s *UserService) Recommend(ctx context.Context, requesterID uint) ([]models.SearchResult, error) {
	users, err := s.followRepo.Recommend(ctx, requesterID, RecommendLimit)
	if err != nil {
		return nil, err
	}
	return s.withFollowFlags(ctx, requesterID, users)
}

// withFollowFlags projects users into search results with the requester's
// i_follow flag resolved in a single query.
func (s *UserService) withFollowFlags(ctx context.Context, requesterID uint, users []models.User) ([]models.SearchResult, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	followed := map[uint]bool{}
	if requesterID != 0 && len(ids) > 0 {
		followedIDs, err := s.followRepo.FollowedIDs(ctx, requesterID, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range followedIDs {
			followed[id] = true
		}
	}
	results := make([]models.SearchResult, 0, len(users))
	for _, u := range users {
		results = append(results, models.SearchResult{
			Name:     u.Name,
			Username: u.Username,
			Avatar:   u.Avatar,
			IFollow:  followed[u.ID],
		})
	}
	return results, nil
}
