package seed

import (
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory creates realistic domain rows for development databases and tests.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand

	// One bcrypt hash shared by every seeded user; hashing per-user makes
	// large seeds painfully slow.
	passwordHash string
}

// NewFactory returns a Factory seeded from the current time.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}
}

// clampRunes trims text to the given rune limit so generated content always
// respects column limits.
func clampRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// CreateUser inserts a user with generated identity fields.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		Username: fmt.Sprintf("%s%s%d", first, last, f.rng.Intn(10000)),
		Email:    fmt.Sprintf("%s.%s%d@example.com", first, last, f.rng.Intn(10000)),
		Name:     first + " " + last,
		Bio:      clampRunes(gofakeit.Sentence(8), 200),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/200?u=%s", gofakeit.UUID()),
		Password: f.passwordHash,
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost inserts a post authored by the user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:  user.ID,
		Content: clampRunes(gofakeit.Sentence(10), models.MaxPostContentLen),
	}
	if f.rng.Intn(4) == 0 {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}
	for _, o := range overrides {
		o(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment inserts a comment by the user on the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		UserID: user.ID,
		PostID: post.ID,
		Body:   clampRunes(gofakeit.Sentence(6), models.MaxCommentBodyLen),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow inserts a follow edge. Duplicate edges are ignored.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	if follower.ID == followee.ID {
		return nil
	}
	follow := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
	return f.db.Where(models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
	}).FirstOrCreate(follow).Error
}

// CreateLike adds the user to the post's liked set.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.db.Where(models.Like{UserID: user.ID, PostID: post.ID}).FirstOrCreate(like).Error
}

// CreateShare adds the user to the post's shared set.
func (f *Factory) CreateShare(user *models.User, post *models.Post) error {
	share := &models.Share{UserID: user.ID, PostID: post.ID}
	return f.db.Where(models.Share{UserID: user.ID, PostID: post.ID}).FirstOrCreate(share).Error
}

// CreateNotification records a derived notification row directly. Seeding
// bypasses the service hooks so it can control read state and timestamps.
func (f *Factory) CreateNotification(notiType string, from, to *models.User, postID *uint, read bool) error {
	noti := &models.Notification{
		Type:       notiType,
		FromUserID: from.ID,
		ToUserID:   to.ID,
		PostID:     postID,
		IsRead:     read,
	}
	return f.db.Create(noti).Error
}

// CreateChatMessage inserts a message into the canonical channel for the pair.
func (f *Factory) CreateChatMessage(from, to *models.User) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		Username: from.Username,
		Message:  clampRunes(gofakeit.HipsterSentence(4), models.MaxChatMessageLen),
		Channel:  service.ChannelName(from.Username, to.Username),
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}
