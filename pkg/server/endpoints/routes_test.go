package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/config"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/db/dbtest"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
)

// newTestServer wires every endpoint onto a server backed by an in-memory
// database.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("PWSTORE_CONFIG_PATH", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	s := server.NewServer(dbtest.Open(t), cfg, newTestTokens(t), zap.NewNop(), "127.0.0.1", "0")
	RegisterAll(s)
	return s.Handler()
}

func call(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type session struct {
	token  string
	userID uint
}

func register(t *testing.T, h http.Handler, name string) session {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":"%s@example.com","password":"long-enough","password_confirmation":"long-enough"}`, name, name)
	w := call(t, h, "POST", "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return session{token: resp.Data.Token, userID: resp.Data.User.ID}
}

func dataID(t *testing.T, w *httptest.ResponseRecorder) uint {
	t.Helper()
	var resp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

type listing struct {
	Data struct {
		Groups []struct {
			ID        uint `json:"id"`
			Passwords []struct {
				ID uint `json:"id"`
			} `json:"passwords"`
		} `json:"groups"`
		Passwords []struct {
			ID    uint `json:"id"`
			Owner bool `json:"owner"`
		} `json:"passwords"`
	} `json:"data"`
}

func list(t *testing.T, h http.Handler, s session) listing {
	t.Helper()
	w := call(t, h, "GET", "/api/v1/passwords", s.token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var l listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l))
	return l
}

func TestRoutes_SharingLifecycle(t *testing.T) {
	h := newTestServer(t)

	alice := register(t, h, "alice")
	bob := register(t, h, "bob")

	assert.Equal(t, http.StatusUnauthorized, call(t, h, "GET", "/api/v1/passwords", "", "").Code)

	w := call(t, h, "GET", "/api/v1/users", alice.token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"bob"`)
	assert.NotContains(t, w.Body.String(), `"name":"alice"`)

	w = call(t, h, "POST", "/api/v1/groups", alice.token, `{"name":"work"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	groupID := dataID(t, w)

	body := fmt.Sprintf(`{"name":"mail","password":"hunter2","description":"inbox","toGroupId":%d,"allowedUsers":[%d]}`, groupID, bob.userID)
	w = call(t, h, "POST", "/api/v1/passwords", alice.token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	passwordID := dataID(t, w)

	// The owner sees the password once, under its group.
	l := list(t, h, alice)
	require.Len(t, l.Data.Groups, 1)
	require.Len(t, l.Data.Groups[0].Passwords, 1)
	assert.Equal(t, passwordID, l.Data.Groups[0].Passwords[0].ID)
	assert.Empty(t, l.Data.Passwords)

	// Bob has no group link, so the shared password is standalone.
	l = list(t, h, bob)
	assert.Empty(t, l.Data.Groups)
	require.Len(t, l.Data.Passwords, 1)
	assert.False(t, l.Data.Passwords[0].Owner)

	passwordPath := fmt.Sprintf("/api/v1/passwords/%d", passwordID)
	assert.Equal(t, http.StatusOK, call(t, h, "GET", passwordPath, bob.token, "").Code)
	assert.Equal(t, http.StatusForbidden, call(t, h, "PUT", passwordPath, bob.token, `{"name":"stolen"}`).Code)

	togglePath := fmt.Sprintf("%s/users/%d", passwordPath, bob.userID)
	w = call(t, h, "PATCH", togglePath, alice.token, `{"permitted":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, list(t, h, bob).Data.Passwords)
	assert.Equal(t, http.StatusForbidden, call(t, h, "GET", passwordPath, bob.token, "").Code)

	w = call(t, h, "GET", passwordPath+"/allowed_users", alice.token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"data":[%d]}`, bob.userID), w.Body.String())

	w = call(t, h, "PATCH", "/api/v1/passwords/groups", alice.token,
		fmt.Sprintf(`{"password_id":%d,"from_group_id":%d}`, passwordID, groupID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	l = list(t, h, alice)
	assert.Empty(t, l.Data.Groups[0].Passwords)
	assert.Len(t, l.Data.Passwords, 1)
}

func TestRoutes_GroupDeleteCascades(t *testing.T) {
	h := newTestServer(t)
	alice := register(t, h, "alice")

	w := call(t, h, "POST", "/api/v1/groups", alice.token, `{"name":"work"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	groupID := dataID(t, w)

	w = call(t, h, "POST", "/api/v1/passwords", alice.token,
		fmt.Sprintf(`{"name":"vpn","password":"x","toGroupId":%d}`, groupID))
	require.Equal(t, http.StatusCreated, w.Code)
	passwordID := dataID(t, w)

	w = call(t, h, "DELETE", fmt.Sprintf("/api/v1/groups/%d", groupID), alice.token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, h, "GET", fmt.Sprintf("/api/v1/passwords/%d", passwordID), alice.token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_DuplicateNamesPerOwner(t *testing.T) {
	h := newTestServer(t)
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")

	body := `{"name":"mail","password":"x"}`
	assert.Equal(t, http.StatusCreated, call(t, h, "POST", "/api/v1/passwords", alice.token, body).Code)
	assert.Equal(t, http.StatusConflict, call(t, h, "POST", "/api/v1/passwords", alice.token, body).Code)
	assert.Equal(t, http.StatusCreated, call(t, h, "POST", "/api/v1/passwords", bob.token, body).Code)
}

func TestRoutes_Public(t *testing.T) {
	h := newTestServer(t)

	w := call(t, h, "GET", "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, h, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, h, "POST", "/auth/login", "", `{"email":"nobody@example.com","password":"whatever"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
