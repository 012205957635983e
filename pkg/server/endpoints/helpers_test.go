package endpoints

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
)

var (
	alice = &identity.Identity{UserID: 1, Name: "alice", Email: "alice@example.com", Role: model.RoleUser}
	admin = &identity.Identity{UserID: 9, Name: "root", Email: "root@example.com", Role: model.RoleAdmin}
)

// requestWithIdentity builds a request as the token middleware would hand
// it to a handler.
func requestWithIdentity(method, path, body string, id *identity.Identity) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		req = req.WithContext(identity.Set(req.Context(), id))
	}
	return req
}

func withMuxVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func ptr(v uint) *uint {
	return &v
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
