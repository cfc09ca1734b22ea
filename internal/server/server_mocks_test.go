package server

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, excludeUserID uint, limit int) ([]models.User, error) {
	args := m.Called(ctx, query, excludeUserID, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Follow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) FollowedUsers(ctx context.Context, followerID uint) ([]models.UserSummary, error) {
	args := m.Called(ctx, followerID)
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockFollowRepository) FollowedIDs(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error) {
	args := m.Called(ctx, followerID, candidateIDs)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockFollowRepository) Recommend(ctx context.Context, userID uint, limit int) ([]models.User, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, authorID, limit, offset, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetLikedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit, offset, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetSharedBy(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit, offset, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Share(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Unshare(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) IsShared(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	args := m.Called(ctx, postID, limit, offset)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotificationRepository is a mock of the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, noti *models.Notification) error {
	args := m.Called(ctx, noti)
	return args.Error(0)
}

func (m *MockNotificationRepository) ExistsUnread(ctx context.Context, notiType string, fromUserID, toUserID uint, postID *uint) (bool, error) {
	args := m.Called(ctx, notiType, fromUserID, toUserID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, userID uint, read bool, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, read, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteForPost(ctx context.Context, postID uint) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

// MockChatRepository is a mock of the ChatRepository interface
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepository) History(ctx context.Context, channel string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, channel, limit)
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

// testMocks bundles every repository mock behind a test server.
type testMocks struct {
	users    *MockUserRepository
	follows  *MockFollowRepository
	posts    *MockPostRepository
	comments *MockCommentRepository
	notis    *MockNotificationRepository
	chats    *MockChatRepository
}

// newTestServer wires a Server over repository mocks, mirroring the
// production wiring minus database, Redis, and hubs.
func newTestServer() (*Server, *testMocks) {
	m := &testMocks{
		users:    new(MockUserRepository),
		follows:  new(MockFollowRepository),
		posts:    new(MockPostRepository),
		comments: new(MockCommentRepository),
		notis:    new(MockNotificationRepository),
		chats:    new(MockChatRepository),
	}

	s := &Server{
		userRepo:    m.users,
		followRepo:  m.follows,
		postRepo:    m.posts,
		commentRepo: m.comments,
		notiRepo:    m.notis,
		chatRepo:    m.chats,
	}
	s.notiService = service.NewNotificationService(m.notis, nil)
	s.userService = service.NewUserService(m.users, m.follows, s.notiService)
	s.postService = service.NewPostService(m.posts, m.users, m.notis, s.notiService, s.isStaffByUserID)
	s.commentService = service.NewCommentService(m.comments, m.posts, s.notiService)
	s.chatService = service.NewChatService(m.chats, m.users, nil)
	return s, m
}

// authedApp returns a fiber app whose middleware injects the authenticated
// identity the same way AuthRequired does.
func authedApp(userID uint, username string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		c.Locals("username", username)
		return c.Next()
	})
	return app
}
