package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health-check", nil), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, "success", body.Data)
	assert.Equal(t, "API is up and running", body.Message)
	assert.Equal(t, http.StatusOK, body.StatusCode)
}

func TestReadinessCheck(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	token := env.login(t, "alice")

	t.Run("missing token", func(t *testing.T) {
		resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/my-profile", nil), "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized request", body.Message)
		assert.False(t, body.Success)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/my-profile", nil), "not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/my-profile", nil), token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", dataMap(t, body)["username"])
	})

	t.Run("user deleted", func(t *testing.T) {
		require.NoError(t, env.db.Delete(&models.User{}, alice.ID).Error)
		cache.InvalidateUser(context.Background(), alice.ID)
		resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/my-profile", nil), token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid access token", body.Message)
	})
}

func TestRegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"fullName": "Alice Doe",
			"password": "password123",
		},
		map[string]string{"avatar": "me.png"},
	)
	resp, body := env.do(t, req, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	assert.Equal(t, "User Registered Successfully", body.Message)
	user := dataMap(t, body)
	assert.Equal(t, "alice", user["username"])
	assert.True(t, strings.HasPrefix(user["avatar"].(string), "https://cdn.test/"))
	assert.NotContains(t, user, "password")
	assert.Equal(t, 1, env.store.Len())

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	assert.Equal(t, "User logged in successfully", body.Message)

	cookies := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, accessTokenCookie)
	require.Contains(t, cookies, refreshTokenCookie)
	assert.True(t, cookies[accessTokenCookie].HttpOnly)

	token := dataMap(t, body)["accessToken"].(string)
	assert.Equal(t, cookies[accessTokenCookie].Value, token)

	resp, body = env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User logged out successfully", body.Message)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/my-profile", nil), token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", body.Message)
}

func TestLogin_UsernameOrEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	for _, id := range []string{"alice", "alice@example.com", " Alice "} {
		t.Run(id, func(t *testing.T) {
			resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
				"usernameOrEmail": id,
				"password":        "password123",
			}), "")
			require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
			assert.Equal(t, "User logged in successfully", body.Message)
			assert.NotEmpty(t, dataMap(t, body)["accessToken"])
		})
	}

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"usernameOrEmail": "alice",
		"password":        "wrong-password",
	}), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, body.Message)

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"password": "password123",
	}), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username or email is required", body.Message)
}

func TestRegister_RequiresAvatar(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"fullName": "Alice Doe",
			"password": "password123",
		}, nil)
	resp, body := env.do(t, req, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestRefreshToken_RotatesOnce(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": "alice",
		"password": "password123",
	}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refresh := dataMap(t, body)["refreshToken"].(string)

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/v1/users/refresh-token", map[string]string{
		"refreshToken": refresh,
	}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	assert.Equal(t, "Access token refreshed", body.Message)
	assert.NotEqual(t, refresh, dataMap(t, body)["refreshToken"])

	resp, _ = env.do(t, jsonRequest(http.MethodPost, "/api/v1/users/refresh-token", map[string]string{
		"refreshToken": refresh,
	}), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVideos_PublishAndList(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	token := env.login(t, "alice")

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil), token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos",
		map[string]string{
			"title":       "Go generics",
			"description": "type parameters in practice",
			"duration":    "61.5",
		},
		map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"},
	)
	resp, body = env.do(t, req, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	assert.Equal(t, "Video published successfully", body.Message)
	video := dataMap(t, body)
	assert.Equal(t, 61.5, video["duration"])
	assert.Equal(t, 2, env.store.Len())

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/videos?query=generics&sortBy=views", nil), token)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	list, ok := body.Data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/videos?sortBy=bogus", nil), token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid sortBy field", body.Message)

	id := uint(video["id"].(float64))
	resp, body = env.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/videos/%d", id), nil), token)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	assert.Equal(t, 0, env.store.Len())
}

func TestPublishVideo_RejectsNonFiniteDuration(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	token := env.login(t, "alice")

	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Infinity", "1e400", "ten"} {
		t.Run(raw, func(t *testing.T) {
			req := multipartRequest(t, http.MethodPost, "/api/v1/videos",
				map[string]string{"title": "Clip", "description": "desc", "duration": raw},
				map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"},
			)
			resp, body := env.do(t, req, token)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Duration must be a number of seconds", body.Message)
		})
	}
	assert.Equal(t, 0, env.store.Len())
}

func TestToggleSubscription_Messages(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	bobToken := env.login(t, "bob")
	target := fmt.Sprintf("/api/v1/subscriptions/c/%d", alice.ID)

	resp, body := env.do(t, httptest.NewRequest(http.MethodPost, target, nil), bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Subscribed successfully", body.Message)
	assert.Nil(t, body.Data)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, target, nil), bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Data, 1)

	resp, body = env.do(t, httptest.NewRequest(http.MethodPost, target, nil), bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Unsubscribed successfully", body.Message)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/9999", nil), bobToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleLike_CreatedThenOK(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	token := env.login(t, "alice")

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/v1/tweets", map[string]string{"content": "hello"}), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	tweetID := uint(dataMap(t, body)["id"].(float64))
	target := fmt.Sprintf("/api/v1/likes/toggle/t/%d", tweetID)

	resp, body = env.do(t, httptest.NewRequest(http.MethodPost, target, nil), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Liked", body.Message)
	assert.Equal(t, float64(1), dataMap(t, body)["totalLikes"])

	resp, body = env.do(t, httptest.NewRequest(http.MethodPost, target, nil), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Unliked", body.Message)
	assert.Equal(t, float64(0), dataMap(t, body)["totalLikes"])

	resp, body = env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/t/abc", nil), token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid tweet ID", body.Message)
}

func TestPlaylists_OwnershipAndConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	env.createUser(t, "bob")
	aliceToken := env.login(t, "alice")
	bobToken := env.login(t, "bob")

	create := func() (*http.Response, models.APIResponse) {
		return env.do(t, jsonRequest(http.MethodPost, "/api/v1/playlists", map[string]string{
			"name":        "Favourites",
			"description": "the good ones",
		}), aliceToken)
	}

	resp, body := create()
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	playlistID := uint(dataMap(t, body)["id"].(float64))

	resp, _ = create()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	target := fmt.Sprintf("/api/v1/playlists/%d", playlistID)
	resp, _ = env.do(t, jsonRequest(http.MethodPatch, target, map[string]string{"name": "Mine now"}), bobToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, httptest.NewRequest(http.MethodDelete, target, nil), aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Playlist deleted successfully", body.Message)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
}

func TestWebsocket_DeliversSubscriberEvent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	aliceToken := env.login(t, "alice")
	bobToken := env.login(t, "bob")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, env.server.hub.Start(ctx, env.server.notifier))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	header := http.Header{}
	header.Set(fiber.HeaderAuthorization, "Bearer "+aliceToken)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/api/v1/ws", header)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool {
		return env.server.hub.Connections(alice.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/subscriptions/c/%d", alice.ID), nil), bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev notifications.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, notifications.EventSubscriberAdded, ev.Type)
}

func TestWebsocket_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	token := env.login(t, "alice")

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil), token)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
