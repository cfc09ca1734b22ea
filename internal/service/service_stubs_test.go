package service

import (
	"context"

	"ripple/internal/models"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	searchFn        func(context.Context, string, uint, int) ([]models.User, error)
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, query string, excludeUserID uint, limit int) ([]models.User, error) {
	return s.searchFn(ctx, query, excludeUserID, limit)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		searchFn:        func(_ context.Context, _ string, _ uint, _ int) ([]models.User, error) { return nil, nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn         func(context.Context, uint, uint) (bool, error)
	unfollowFn       func(context.Context, uint, uint) (bool, error)
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
	followedUsersFn  func(context.Context, uint) ([]models.UserSummary, error)
	followedIDsFn    func(context.Context, uint, []uint) ([]uint, error)
	recommendFn      func(context.Context, uint, int) ([]models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}
func (s *followRepoStub) FollowedUsers(ctx context.Context, followerID uint) ([]models.UserSummary, error) {
	return s.followedUsersFn(ctx, followerID)
}
func (s *followRepoStub) FollowedIDs(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error) {
	return s.followedIDsFn(ctx, followerID, candidateIDs)
}
func (s *followRepoStub) Recommend(ctx context.Context, userID uint, limit int) ([]models.User, error) {
	return s.recommendFn(ctx, userID, limit)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		followedUsersFn:  func(_ context.Context, _ uint) ([]models.UserSummary, error) { return nil, nil },
		followedIDsFn:    func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
		recommendFn:      func(_ context.Context, _ uint, _ int) ([]models.User, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint, uint) (*models.Post, error)
	listFn        func(context.Context, int, int, uint) ([]*models.Post, error)
	getByAuthorFn func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	getLikedByFn  func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	getSharedByFn func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	updateFn      func(context.Context, *models.Post) error
	deleteFn      func(context.Context, uint) error
	likeFn        func(context.Context, uint, uint) (bool, error)
	unlikeFn      func(context.Context, uint, uint) (bool, error)
	isLikedFn     func(context.Context, uint, uint) (bool, error)
	shareFn       func(context.Context, uint, uint) (bool, error)
	unshareFn     func(context.Context, uint, uint) (bool, error)
	isSharedFn    func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, currentUserID)
}
func (s *postRepoStub) GetByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByAuthorFn(ctx, authorID, limit, offset, currentUserID)
}
func (s *postRepoStub) GetLikedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getLikedByFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) GetSharedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getSharedByFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Share(ctx context.Context, userID, postID uint) (bool, error) {
	return s.shareFn(ctx, userID, postID)
}
func (s *postRepoStub) Unshare(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unshareFn(ctx, userID, postID)
}
func (s *postRepoStub) IsShared(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isSharedFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		listFn:        func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		getByAuthorFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		getLikedByFn:  func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		getSharedByFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
		likeFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:      func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isLikedFn:     func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		shareFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unshareFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isSharedFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, int, int) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1}, nil
		},
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// notiRepoStub is a stub for repository.NotificationRepository.
type notiRepoStub struct {
	createFn          func(context.Context, *models.Notification) error
	existsUnreadFn    func(context.Context, string, uint, uint, *uint) (bool, error)
	listByRecipientFn func(context.Context, uint, bool, int, int) ([]*models.Notification, error)
	countUnreadFn     func(context.Context, uint) (int64, error)
	markAllReadFn     func(context.Context, uint) (int64, error)
	deleteForPostFn   func(context.Context, uint) error
}

func (s *notiRepoStub) Create(ctx context.Context, noti *models.Notification) error {
	return s.createFn(ctx, noti)
}
func (s *notiRepoStub) ExistsUnread(ctx context.Context, notiType string, fromUserID, toUserID uint, postID *uint) (bool, error) {
	return s.existsUnreadFn(ctx, notiType, fromUserID, toUserID, postID)
}
func (s *notiRepoStub) ListByRecipient(ctx context.Context, userID uint, read bool, limit, offset int) ([]*models.Notification, error) {
	return s.listByRecipientFn(ctx, userID, read, limit, offset)
}
func (s *notiRepoStub) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.countUnreadFn(ctx, userID)
}
func (s *notiRepoStub) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.markAllReadFn(ctx, userID)
}
func (s *notiRepoStub) DeleteForPost(ctx context.Context, postID uint) error {
	return s.deleteForPostFn(ctx, postID)
}

func noopNotiRepo() *notiRepoStub {
	return &notiRepoStub{
		createFn: func(_ context.Context, _ *models.Notification) error { return nil },
		existsUnreadFn: func(_ context.Context, _ string, _, _ uint, _ *uint) (bool, error) {
			return false, nil
		},
		listByRecipientFn: func(_ context.Context, _ uint, _ bool, _, _ int) ([]*models.Notification, error) {
			return nil, nil
		},
		countUnreadFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		markAllReadFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteForPostFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// chatRepoStub is a stub for repository.ChatRepository.
type chatRepoStub struct {
	saveMessageFn func(context.Context, *models.ChatMessage) error
	historyFn     func(context.Context, string, int) ([]models.ChatMessage, error)
}

func (s *chatRepoStub) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.saveMessageFn(ctx, msg)
}
func (s *chatRepoStub) History(ctx context.Context, channel string, limit int) ([]models.ChatMessage, error) {
	return s.historyFn(ctx, channel, limit)
}

func noopChatRepo() *chatRepoStub {
	return &chatRepoStub{
		saveMessageFn: func(_ context.Context, _ *models.ChatMessage) error { return nil },
		historyFn:     func(_ context.Context, _ string, _ int) ([]models.ChatMessage, error) { return nil, nil },
	}
}

// hooksRecorder records every side-effect hook invocation.
type hooksRecorder struct {
	followed  []uint
	liked     []uint
	shared    []uint
	commented []uint
}

func (h *hooksRecorder) UserFollowed(_ context.Context, actor, target *models.User) (*models.Notification, error) {
	h.followed = append(h.followed, target.ID)
	return &models.Notification{
		Type:         models.NotiTypeFollow,
		FromUserID:   actor.ID,
		ToUserID:     target.ID,
		FromUsername: actor.Username,
		ToUsername:   target.Username,
		Avatar:       actor.Avatar,
	}, nil
}
func (h *hooksRecorder) PostLiked(_ context.Context, _ uint, post *models.Post) error {
	h.liked = append(h.liked, post.ID)
	return nil
}
func (h *hooksRecorder) PostShared(_ context.Context, _ uint, post *models.Post) error {
	h.shared = append(h.shared, post.ID)
	return nil
}
func (h *hooksRecorder) PostCommented(_ context.Context, _ uint, post *models.Post, _ uint) error {
	h.commented = append(h.commented, post.ID)
	return nil
}
