package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"messenger/internal/config"
	"messenger/internal/models"
	"messenger/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		Env:       "test",
		Port:      "0",
		JWTSecret: "test-secret-for-handlers",
	}
	srv, err := NewServerWithDeps(cfg, testutil.NewTestDB(t), nil)
	require.NoError(t, err)
	return srv.NewApp()
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func signUp(t *testing.T, app *fiber.App, login string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"login":    login,
		"password": "pw-" + login,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createChat(t *testing.T, app *fiber.App, token string, participants ...string) uint {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/chats", token, fiber.Map{"participants": participants})
	require.Equal(t, http.StatusCreated, status, string(body))
	var chat models.Chat
	require.NoError(t, json.Unmarshal(body, &chat))
	return chat.ID
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Code
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"redis":"unavailable"`)
}

func TestAuthHandlers(t *testing.T) {
	app := newTestApp(t)
	signUp(t, app, "alice")

	t.Run("duplicate signup", func(t *testing.T) {
		status, body := call(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{"login": "alice", "password": "x"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, models.CodeValidation, errorCode(t, body))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login", func(t *testing.T) {
		status, body := call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"login": "alice", "password": "pw-alice"})
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), `"token"`)
		assert.NotContains(t, string(body), "password")
	})

	t.Run("bad credentials", func(t *testing.T) {
		status, body := call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"login": "alice", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, models.CodeUnauthorized, errorCode(t, body))
	})

	t.Run("protected route without token", func(t *testing.T) {
		status, _ := call(t, app, http.MethodGet, "/api/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestUserAndListHandlers(t *testing.T) {
	app := newTestApp(t)
	alice := signUp(t, app, "alice")
	signUp(t, app, "bob")

	status, body := call(t, app, http.MethodPut, "/api/users/me/status", alice, fiber.Map{"status": "hello"})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"hello"}`, string(body))

	status, body = call(t, app, http.MethodPut, "/api/users/me/status", alice, fiber.Map{"status": strings.Repeat("s", 141)})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errorCode(t, body))

	status, body = call(t, app, http.MethodGet, "/api/users/me", alice, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"login":"alice"`)

	status, _ = call(t, app, http.MethodGet, "/api/users/nobody", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = call(t, app, http.MethodPost, "/api/lists/contact", alice, fiber.Map{"login": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeSelfReference, errorCode(t, body))

	status, _ = call(t, app, http.MethodPost, "/api/lists/contact", alice, fiber.Map{"login": "bob"})
	assert.Equal(t, http.StatusCreated, status)

	status, body = call(t, app, http.MethodPost, "/api/lists/contact", alice, fiber.Map{"login": "bob"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, errorCode(t, body))

	status, _ = call(t, app, http.MethodPost, "/api/lists/friends", alice, fiber.Map{"login": "bob"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, http.MethodGet, "/api/lists/contact", alice, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"kind":"contact","members":[{"login":"bob","status":""}]}`, string(body))

	status, _ = call(t, app, http.MethodDelete, "/api/lists/contact/bob", alice, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = call(t, app, http.MethodGet, "/api/lists/contact", alice, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"kind":"contact","members":[]}`, string(body))

	status, _ = call(t, app, http.MethodDelete, "/api/users/me", alice, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = call(t, app, http.MethodGet, "/api/users/me", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestChatAndMessageHandlers(t *testing.T) {
	app := newTestApp(t)
	owner := signUp(t, app, "owner")
	member := signUp(t, app, "member")
	outsider := signUp(t, app, "outsider")

	chatID := createChat(t, app, owner, "member")
	base := fmt.Sprintf("/api/chats/%d", chatID)

	status, body := call(t, app, http.MethodPost, "/api/chats", owner, fiber.Map{"participants": []string{}})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	for i := 1; i <= 12; i++ {
		status, body := call(t, app, http.MethodPost, base+"/messages", member, fiber.Map{"text": fmt.Sprintf("m%d", i)})
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body = call(t, app, http.MethodPost, base+"/messages", member, fiber.Map{"text": strings.Repeat("x", 301)})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPost, base+"/messages", outsider, fiber.Map{"text": "hi"})
	assert.Equal(t, http.StatusForbidden, status)

	var page models.Page
	status, body = call(t, app, http.MethodGet, base+"/messages", owner, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Messages, 10)
	assert.Equal(t, "m12", page.Messages[0].Text)
	assert.False(t, page.HasPrevious)
	assert.True(t, page.HasNext)

	status, body = call(t, app, http.MethodGet, base+"/messages?offset=10", owner, nil)
	require.Equal(t, http.StatusOK, status)
	page = models.Page{}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Messages, 2)
	assert.True(t, page.HasPrevious)

	status, _ = call(t, app, http.MethodGet, base+"/messages?offset=-10", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodGet, base+"/messages?view=bogus", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodGet, base+"/messages", outsider, nil)
	assert.Equal(t, http.StatusForbidden, status)

	msgID := page.Messages[0].ID
	msgPath := fmt.Sprintf("%s/messages/%d", base, msgID)

	status, _ = call(t, app, http.MethodPut, msgPath, owner, fiber.Map{"text": "edited by owner"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPut, msgPath, member, fiber.Map{"text": "edited"})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"text":"edited"`)

	status, _ = call(t, app, http.MethodDelete, msgPath, owner, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = call(t, app, http.MethodDelete, base+"/messages/abc", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPost, base+"/members", member, fiber.Map{"login": "outsider"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, base+"/members", owner, fiber.Map{"login": "outsider"})
	assert.Equal(t, http.StatusCreated, status)

	status, body = call(t, app, http.MethodGet, base, outsider, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"member_login":"outsider"`)

	status, _ = call(t, app, http.MethodDelete, base+"/members/owner", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodDelete, base+"/members/outsider", owner, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = call(t, app, http.MethodGet, "/api/chats", member, nil)
	assert.Equal(t, http.StatusOK, status)
	var chats []models.Chat
	require.NoError(t, json.Unmarshal(body, &chats))
	assert.Len(t, chats, 1)

	status, body = call(t, app, http.MethodGet, "/api/chats/owned", owner, nil)
	assert.Equal(t, http.StatusOK, status)
	chats = nil
	require.NoError(t, json.Unmarshal(body, &chats))
	assert.Len(t, chats, 1)

	status, _ = call(t, app, http.MethodDelete, base, member, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodDelete, base, owner, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = call(t, app, http.MethodGet, base, owner, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodGet, "/api/chats/0", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
