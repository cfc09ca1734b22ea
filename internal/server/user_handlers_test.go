package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestToggleFollow_Self(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByUsername", mock.Anything, "alice").
		Return(&models.User{ID: 1, Username: "alice"}, nil)

	app := authedApp(1, "alice")
	app.Post("/follow/:username", s.ToggleFollow)

	req := httptest.NewRequest(http.MethodPost, "/follow/alice", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	m.follows.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleFollow_UnknownUser(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

	app := authedApp(1, "alice")
	app.Post("/follow/:username", s.ToggleFollow)

	req := httptest.NewRequest(http.MethodPost, "/follow/ghost", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleFollow_FollowReturnsNotification(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByUsername", mock.Anything, "bob").
		Return(&models.User{ID: 2, Username: "bob"}, nil)
	m.users.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "alice", Avatar: "a.png"}, nil)
	m.follows.On("Follow", mock.Anything, uint(1), uint(2)).Return(true, nil)
	m.notis.On("Create", mock.Anything, mock.Anything).Return(nil)

	app := authedApp(1, "alice")
	app.Post("/follow/:username", s.ToggleFollow)

	req := httptest.NewRequest(http.MethodPost, "/follow/bob", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "alice", body["from_user"])
	assert.Equal(t, "bob", body["to_user"])
	assert.Equal(t, "a.png", body["avatar"])
}

func TestToggleFollow_Unfollow(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByUsername", mock.Anything, "bob").
		Return(&models.User{ID: 2, Username: "bob"}, nil)
	m.follows.On("Follow", mock.Anything, uint(1), uint(2)).Return(false, nil)
	m.follows.On("Unfollow", mock.Anything, uint(1), uint(2)).Return(true, nil)

	app := authedApp(1, "alice")
	app.Post("/follow/:username", s.ToggleFollow)

	req := httptest.NewRequest(http.MethodPost, "/follow/bob", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "no longer following", body["detail"])
	// No notification on the unfollow transition.
	m.notis.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetProfile_NotFound(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

	app := authedApp(1, "alice")
	app.Get("/users/:username", s.GetProfile)

	req := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateProfile_NotOwner(t *testing.T) {
	s, _ := newTestServer()

	app := authedApp(1, "alice")
	app.Put("/users/:username", s.UpdateProfile)

	req := httptest.NewRequest(http.MethodPut, "/users/bob", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSearchUsers_EmptyQuery(t *testing.T) {
	s, m := newTestServer()

	app := authedApp(1, "alice")
	app.Get("/u/search", s.SearchUsers)

	req := httptest.NewRequest(http.MethodGet, "/u/search", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string][]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body["users"])
	m.users.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommendUsers(t *testing.T) {
	s, m := newTestServer()
	m.follows.On("Recommend", mock.Anything, uint(1), mock.Anything).
		Return([]models.User{{ID: 2, Username: "bob"}, {ID: 3, Username: "carol"}}, nil)
	m.follows.On("FollowedIDs", mock.Anything, uint(1), mock.Anything).
		Return([]uint{}, nil)

	app := authedApp(1, "alice")
	app.Get("/reco", s.RecommendUsers)

	req := httptest.NewRequest(http.MethodGet, "/reco", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string][]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body["users"], 2)
	assert.Equal(t, "bob", body["users"][0]["username"])
}
