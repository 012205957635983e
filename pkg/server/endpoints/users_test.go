package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

func TestHandleCurrentUser(t *testing.T) {
	w := httptest.NewRecorder()
	handleCurrentUser()(w, requestWithIdentity("GET", "/api/v1/user", "", admin))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"id":9,"name":"root","email":"root@example.com","roles":["admin"]}}`, w.Body.String())
}

func TestHandleListUsers(t *testing.T) {
	users := NewMockUsersStore()
	users.On("ListShareableUsers", alice.UserID).Return([]store.UserSummary{
		{ID: 2, Name: "bob", Email: "bob@example.com"},
	}, nil)

	w := httptest.NewRecorder()
	handleListUsers(users, zap.NewNop())(w, requestWithIdentity("GET", "/api/v1/users", "", alice))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"id":2,"name":"bob","email":"bob@example.com"}]}`, w.Body.String())
}
