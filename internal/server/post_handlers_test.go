package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		mockSetup      func(m *testMocks)
		expectedStatus int
	}{
		{
			name:    "Success",
			content: "Hello world",
			mockSetup: func(m *testMocks) {
				m.posts.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.posts.On("GetByID", mock.Anything, mock.Anything, uint(1)).
					Return(&models.Post{ID: 1, UserID: 1, Content: "Hello world"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:    "At Limit",
			content: strings.Repeat("x", 140),
			mockSetup: func(m *testMocks) {
				m.posts.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.posts.On("GetByID", mock.Anything, mock.Anything, uint(1)).
					Return(&models.Post{ID: 2, UserID: 1}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Over Limit",
			content:        strings.Repeat("x", 141),
			mockSetup:      func(m *testMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Empty",
			content:        "",
			mockSetup:      func(m *testMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestServer()
			tt.mockSetup(m)

			app := authedApp(1, "alice")
			app.Post("/posts", s.CreatePost)

			raw, _ := json.Marshal(map[string]string{"content": tt.content})
			req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestToggleLike_ResponseShape(t *testing.T) {
	s, m := newTestServer()
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).
		Return(&models.Post{ID: 5, UserID: 2}, nil)
	m.posts.On("Like", mock.Anything, uint(1), uint(5)).Return(true, nil)
	m.notis.On("ExistsUnread", mock.Anything, models.NotiTypeLike, uint(1), uint(2), mock.Anything).
		Return(false, nil)
	m.notis.On("Create", mock.Anything, mock.Anything).Return(nil)

	app := authedApp(1, "alice")
	app.Post("/like/:id", s.ToggleLike)

	req := httptest.NewRequest(http.MethodPost, "/like/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["liked"])
}

func TestToggleLike_Unlike(t *testing.T) {
	s, m := newTestServer()
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).
		Return(&models.Post{ID: 5, UserID: 2}, nil)
	m.posts.On("Like", mock.Anything, uint(1), uint(5)).Return(false, nil)
	m.posts.On("Unlike", mock.Anything, uint(1), uint(5)).Return(true, nil)

	app := authedApp(1, "alice")
	app.Post("/like/:id", s.ToggleLike)

	req := httptest.NewRequest(http.MethodPost, "/like/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["liked"])
	m.notis.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestToggleLike_UnknownPost(t *testing.T) {
	s, m := newTestServer()
	m.posts.On("GetByID", mock.Anything, uint(99), uint(1)).
		Return(nil, models.NewNotFoundError("Post", uint(99)))

	app := authedApp(1, "alice")
	app.Post("/like/:id", s.ToggleLike)

	req := httptest.NewRequest(http.MethodPost, "/like/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleShare_ResponseShape(t *testing.T) {
	s, m := newTestServer()
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).
		Return(&models.Post{ID: 5, UserID: 2}, nil)
	m.posts.On("Share", mock.Anything, uint(1), uint(5)).Return(true, nil)
	m.notis.On("ExistsUnread", mock.Anything, models.NotiTypeShare, uint(1), uint(2), mock.Anything).
		Return(false, nil)
	m.notis.On("Create", mock.Anything, mock.Anything).Return(nil)

	app := authedApp(1, "alice")
	app.Post("/shared/:id", s.ToggleShare)

	req := httptest.NewRequest(http.MethodPost, "/shared/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["shared"])
}

func TestDeletePost_Owner(t *testing.T) {
	s, m := newTestServer()
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).
		Return(&models.Post{ID: 5, UserID: 1}, nil)
	m.posts.On("Delete", mock.Anything, uint(5)).Return(nil)
	m.notis.On("DeleteForPost", mock.Anything, uint(5)).Return(nil)

	app := authedApp(1, "alice")
	app.Delete("/posts/:id", s.DeletePost)

	req := httptest.NewRequest(http.MethodDelete, "/posts/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	m.posts.AssertCalled(t, "Delete", mock.Anything, uint(5))
}

func TestUpdatePost_NotOwner(t *testing.T) {
	s, m := newTestServer()
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).
		Return(&models.Post{ID: 5, UserID: 2}, nil)

	app := authedApp(1, "alice")
	app.Put("/posts/:id", s.UpdatePost)

	raw, _ := json.Marshal(map[string]string{"content": "edited"})
	req := httptest.NewRequest(http.MethodPut, "/posts/5", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	m.posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetPost_InvalidID(t *testing.T) {
	s, _ := newTestServer()

	app := authedApp(1, "alice")
	app.Get("/posts/:id", s.GetPost)

	req := httptest.NewRequest(http.MethodGet, "/posts/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserPosts_UnknownUser(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

	app := authedApp(1, "alice")
	app.Get("/my/:username", s.GetUserPosts)

	req := httptest.NewRequest(http.MethodGet, "/my/ghost", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
