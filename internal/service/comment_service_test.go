package service

import (
	"context"
	"strings"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateComment_LengthBoundary(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopPostRepo(), &hooksRecorder{})
	ctx := context.Background()

	_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 5, Body: strings.Repeat("x", 141)})
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 5, Body: strings.Repeat("x", 140)})
	require.NoError(t, err)
}

func TestCommentService_CreateComment_UnknownPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	created := false
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, _ *models.Comment) error {
		created = true
		return nil
	}
	svc := NewCommentService(comments, posts, &hooksRecorder{})

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 999, Body: "hi"})
	require.Error(t, err)
	assert.False(t, created)
}

func TestCommentService_CreateComment_NotifiesAuthor(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 2}, nil
	}
	hooks := &hooksRecorder{}
	svc := NewCommentService(noopCommentRepo(), posts, hooks)

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 5, Body: "nice"})
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, hooks.commented)
}

func TestCommentService_ListComments_UnknownPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := NewCommentService(noopCommentRepo(), posts, &hooksRecorder{})

	_, err := svc.ListComments(context.Background(), 999, 10, 0)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCommentService_UpdateComment_OwnerOnly(t *testing.T) {
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 1, Body: "original"}, nil
	}
	svc := NewCommentService(comments, noopPostRepo(), &hooksRecorder{})

	_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{UserID: 2, CommentID: 3, Body: "edited"})
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestCommentService_DeleteComment_OwnerOnly(t *testing.T) {
	deleted := false
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 1}, nil
	}
	comments.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo(), &hooksRecorder{})
	ctx := context.Background()

	require.Error(t, svc.DeleteComment(ctx, 2, 3))
	assert.False(t, deleted)

	require.NoError(t, svc.DeleteComment(ctx, 1, 3))
	assert.True(t, deleted)
}
