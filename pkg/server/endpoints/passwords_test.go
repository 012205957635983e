package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/access"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/reassign"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

func TestHandleListPasswords(t *testing.T) {
	t.Run("user view lists groups and standalone passwords", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		passwords.On("ListVisible", alice.UserID).Return(access.View{
			Capability: access.CapabilityOwnAccessOnly,
			Passwords:  []access.PasswordItem{{ID: 3, Name: "mail", Owner: true, Updated: "1 hour ago"}},
		}, nil)

		w := httptest.NewRecorder()
		handleListPasswords(passwords, zap.NewNop())(w, requestWithIdentity("GET", "/api/v1/passwords", "", alice))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"groups":[],"passwords":[
			{"id":3,"name":"mail","description":"","owner":true,"updated":"1 hour ago"}]}}`, w.Body.String())
	})

	t.Run("admin view lists every password", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		passwords.On("ListVisible", admin.UserID).Return(access.View{Capability: access.CapabilityAllAccess}, nil)

		w := httptest.NewRecorder()
		handleListPasswords(passwords, zap.NewNop())(w, requestWithIdentity("GET", "/api/v1/passwords", "", admin))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"passwords":[]}}`, w.Body.String())
	})

	t.Run("missing identity", func(t *testing.T) {
		passwords := NewMockPasswordsStore()

		w := httptest.NewRecorder()
		handleListPasswords(passwords, zap.NewNop())(w, requestWithIdentity("GET", "/api/v1/passwords", "", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		passwords.AssertNotCalled(t, "ListVisible", mock.Anything)
	})

	t.Run("store failure is a generic 500", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		passwords.On("ListVisible", alice.UserID).Return(access.View{}, errors.New("connection reset"))

		w := httptest.NewRecorder()
		handleListPasswords(passwords, zap.NewNop())(w, requestWithIdentity("GET", "/api/v1/passwords", "", alice))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":{"message":"Server Error"}}`, w.Body.String())
	})
}

func TestHandleCreatePassword(t *testing.T) {
	newHandler := func(passwords *MockPasswordsStore, users *MockUsersStore, authz *MockAuthzStore) http.HandlerFunc {
		return handleCreatePassword(passwords, users, authz, zap.NewNop())
	}

	t.Run("creates a grouped and shared password", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		users := NewMockUsersStore()
		authz := NewMockAuthzStore()

		users.On("MissingUserIDs", []uint{2, 3}).Return([]uint{}, nil)
		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(0)).Return(false, nil)
		authz.On("OwnsGroup", alice.UserID, uint(5)).Return(true)
		passwords.On("CreatePassword", alice.UserID, store.NewPassword{
			Name:         "mail",
			Password:     "hunter2",
			Description:  "work",
			GroupID:      5,
			AllowedUsers: []uint{2, 3},
		}).Return(&store.CreatedPassword{
			ID: 10, Name: "mail", Password: "hunter2", Description: "work", Owner: true, Group: ptr(5),
		}, nil)

		body := `{"name":"mail","password":"hunter2","description":"work","toGroupId":5,"allowedUsers":[2,3]}`
		w := httptest.NewRecorder()
		newHandler(passwords, users, authz)(w, requestWithIdentity("POST", "/api/v1/passwords", body, alice))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"data":{"id":10,"name":"mail","password":"hunter2","description":"work","owner":true,"group":5}}`, w.Body.String())
		passwords.AssertExpectations(t)
	})

	t.Run("group field is accepted as the target group", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()

		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(0)).Return(false, nil)
		authz.On("OwnsGroup", alice.UserID, uint(6)).Return(true)
		passwords.On("CreatePassword", alice.UserID, mock.MatchedBy(func(in store.NewPassword) bool {
			return in.GroupID == 6
		})).Return(&store.CreatedPassword{ID: 11, Name: "mail", Owner: true, Group: ptr(6)}, nil)

		w := httptest.NewRecorder()
		newHandler(passwords, NewMockUsersStore(), authz)(w,
			requestWithIdentity("POST", "/api/v1/passwords", `{"name":"mail","password":"x","group":6}`, alice))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		passwords := NewMockPasswordsStore()

		w := httptest.NewRecorder()
		newHandler(passwords, NewMockUsersStore(), NewMockAuthzStore())(w,
			requestWithIdentity("POST", "/api/v1/passwords", `{"description":"x"}`, alice))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody(t, w)
		errs := body["errors"].(map[string]interface{})
		assert.Equal(t, []interface{}{"The name field is required."}, errs["name"])
		assert.Equal(t, []interface{}{"The password field is required."}, errs["password"])
		assert.Equal(t, "The name field is required. (and 1 more error)", body["message"])
		passwords.AssertNotCalled(t, "CreatePassword", mock.Anything, mock.Anything)
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(0)).Return(true, nil)

		w := httptest.NewRecorder()
		newHandler(passwords, NewMockUsersStore(), NewMockAuthzStore())(w,
			requestWithIdentity("POST", "/api/v1/passwords", `{"name":"mail","password":"x"}`, alice))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"message":"The name has already been taken.","errors":{"name":["The name has already been taken."]}}`, w.Body.String())
		passwords.AssertNotCalled(t, "CreatePassword", mock.Anything, mock.Anything)
	})

	t.Run("unknown allowed users", func(t *testing.T) {
		users := NewMockUsersStore()
		users.On("MissingUserIDs", []uint{42}).Return([]uint{42}, nil)

		w := httptest.NewRecorder()
		newHandler(NewMockPasswordsStore(), users, NewMockAuthzStore())(w,
			requestWithIdentity("POST", "/api/v1/passwords", `{"name":"mail","password":"x","allowedUsers":[42]}`, alice))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "allowedUsers")
	})

	t.Run("group owned by someone else", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(0)).Return(false, nil)
		authz.On("OwnsGroup", alice.UserID, uint(7)).Return(false)

		w := httptest.NewRecorder()
		newHandler(passwords, NewMockUsersStore(), authz)(w,
			requestWithIdentity("POST", "/api/v1/passwords", `{"name":"mail","password":"x","toGroupId":7}`, alice))

		assert.Equal(t, http.StatusForbidden, w.Code)
		passwords.AssertNotCalled(t, "CreatePassword", mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandler(NewMockPasswordsStore(), NewMockUsersStore(), NewMockAuthzStore())(w,
			requestWithIdentity("POST", "/api/v1/passwords", `{"name":`, alice))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleShowPassword(t *testing.T) {
	tests := []struct {
		name     string
		exists   bool
		canView  bool
		wantCode int
	}{
		{"missing password", false, false, http.StatusNotFound},
		{"no permitted link", true, false, http.StatusForbidden},
		{"permitted", true, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passwords := NewMockPasswordsStore()
			authz := NewMockAuthzStore()

			passwords.On("PasswordExists", uint(3)).Return(tt.exists, nil)
			authz.On("CanViewPassword", alice.UserID, uint(3)).Return(tt.canView)
			passwords.On("FetchPassword", alice.UserID, uint(3)).Return(&store.PasswordDetail{
				ID: 3, Name: "mail", Password: "hunter2", Groups: []store.Group{},
			}, nil)

			req := withMuxVars(requestWithIdentity("GET", "/api/v1/passwords/3", "", alice), map[string]string{"id": "3"})
			w := httptest.NewRecorder()
			handleShowPassword(passwords, authz, zap.NewNop())(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"password":"hunter2"`)
			} else {
				passwords.AssertNotCalled(t, "FetchPassword", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandleUpdatePassword(t *testing.T) {
	newRequest := func(body string) *http.Request {
		req := requestWithIdentity("PUT", "/api/v1/passwords/3", body, alice)
		return withMuxVars(req, map[string]string{"id": "3"})
	}

	t.Run("not the owner", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(false)

		w := httptest.NewRecorder()
		handleUpdatePassword(passwords, NewMockUsersStore(), authz, zap.NewNop())(w, newRequest(`{"name":"mail"}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
		passwords.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("absent allowedUsers keeps current sharing", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(true)
		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(3)).Return(false, nil)
		passwords.On("AllowedUsers", alice.UserID, uint(3)).Return([]uint{2}, nil)
		passwords.On("UpdatePassword", alice.UserID, uint(3), store.PasswordChanges{
			Name:         "mail",
			Description:  "renamed",
			ToGroupID:    reassign.KeepGroup,
			AllowedUsers: []uint{2},
		}).Return(&store.UpdatedPassword{ID: 3, Name: "mail", Description: "renamed", Updated: "now"}, nil)

		w := httptest.NewRecorder()
		handleUpdatePassword(passwords, NewMockUsersStore(), authz, zap.NewNop())(w,
			newRequest(`{"name":"mail","description":"renamed"}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"id":3,"name":"mail","description":"renamed","updated":"now"}}`, w.Body.String())
		passwords.AssertExpectations(t)
	})

	t.Run("moves to an owned group and replaces sharing", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		users := NewMockUsersStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(true)
		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(3)).Return(false, nil)
		users.On("MissingUserIDs", []uint{4}).Return([]uint{}, nil)
		authz.On("OwnsGroup", alice.UserID, uint(8)).Return(true)
		passwords.On("UpdatePassword", alice.UserID, uint(3), store.PasswordChanges{
			Name:         "mail",
			Password:     "new-secret",
			ToGroupID:    8,
			AllowedUsers: []uint{4},
		}).Return(&store.UpdatedPassword{ID: 3, Name: "mail"}, nil)

		w := httptest.NewRecorder()
		handleUpdatePassword(passwords, users, authz, zap.NewNop())(w,
			newRequest(`{"name":"mail","password":"new-secret","toGroupId":8,"allowedUsers":[4]}`))

		assert.Equal(t, http.StatusOK, w.Code)
		passwords.AssertNotCalled(t, "AllowedUsers", mock.Anything, mock.Anything)
	})

	t.Run("invalid group sentinel and duplicate name", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(true)
		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(3)).Return(true, nil)

		w := httptest.NewRecorder()
		handleUpdatePassword(passwords, NewMockUsersStore(), authz, zap.NewNop())(w,
			newRequest(`{"name":"mail","toGroupId":-7,"allowedUsers":[]}`))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errs := decodeBody(t, w)["errors"].(map[string]interface{})
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "toGroupId")
	})

	t.Run("target group owned by someone else", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(true)
		passwords.On("PasswordNameTaken", alice.UserID, "mail", uint(3)).Return(false, nil)
		authz.On("OwnsGroup", alice.UserID, uint(8)).Return(false)

		w := httptest.NewRecorder()
		handleUpdatePassword(passwords, NewMockUsersStore(), authz, zap.NewNop())(w,
			newRequest(`{"name":"mail","toGroupId":8}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
		passwords.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleDeletePassword(t *testing.T) {
	t.Run("missing password", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		passwords.On("PasswordExists", uint(3)).Return(false, nil)

		req := withMuxVars(requestWithIdentity("DELETE", "/api/v1/passwords/3", "", alice), map[string]string{"id": "3"})
		w := httptest.NewRecorder()
		handleDeletePassword(passwords, NewMockAuthzStore(), zap.NewNop())(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":{"message":"password not found"}}`, w.Body.String())
	})

	t.Run("owner deletes", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(true)
		passwords.On("DeletePassword", uint(3)).Return(nil)

		req := withMuxVars(requestWithIdentity("DELETE", "/api/v1/passwords/3", "", alice), map[string]string{"id": "3"})
		w := httptest.NewRecorder()
		handleDeletePassword(passwords, authz, zap.NewNop())(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":3}`, w.Body.String())
	})
}

func TestHandleChangePasswordGroup(t *testing.T) {
	newHandler := func(passwords *MockPasswordsStore, authz *MockAuthzStore) http.HandlerFunc {
		return handleChangePasswordGroup(passwords, authz, zap.NewNop())
	}

	t.Run("moves between groups", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("CanChangeGroup", alice.UserID, uint(3), ptr(1), ptr(2)).Return(true)
		passwords.On("ChangeGroup", uint(3), ptr(1), ptr(2)).Return(nil)

		w := httptest.NewRecorder()
		newHandler(passwords, authz)(w, requestWithIdentity("PATCH", "/api/v1/passwords/groups",
			`{"password_id":3,"from_group_id":1,"to_group_id":2}`, alice))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"message":"success"}}`, w.Body.String())
	})

	t.Run("forbidden before any mutation", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("CanChangeGroup", alice.UserID, uint(3), (*uint)(nil), ptr(2)).Return(false)

		w := httptest.NewRecorder()
		newHandler(passwords, authz)(w, requestWithIdentity("PATCH", "/api/v1/passwords/groups",
			`{"password_id":3,"to_group_id":2}`, alice))

		assert.Equal(t, http.StatusForbidden, w.Code)
		passwords.AssertNotCalled(t, "ChangeGroup", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing password id", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandler(NewMockPasswordsStore(), NewMockAuthzStore())(w,
			requestWithIdentity("PATCH", "/api/v1/passwords/groups", `{"to_group_id":2}`, alice))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown password", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(false, nil)

		w := httptest.NewRecorder()
		newHandler(passwords, authz)(w, requestWithIdentity("PATCH", "/api/v1/passwords/groups",
			`{"password_id":3,"to_group_id":2}`, alice))

		assert.Equal(t, http.StatusNotFound, w.Code)
		authz.AssertNotCalled(t, "CanChangeGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("neither group is a server error", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("CanChangeGroup", alice.UserID, uint(3), (*uint)(nil), (*uint)(nil)).Return(true)
		passwords.On("ChangeGroup", uint(3), (*uint)(nil), (*uint)(nil)).
			Return(fmt.Errorf("change group: %w", reassign.ErrNoTransition))

		w := httptest.NewRecorder()
		newHandler(passwords, authz)(w, requestWithIdentity("PATCH", "/api/v1/passwords/groups",
			`{"password_id":3}`, alice))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":{"message":"Server Error"}}`, w.Body.String())
	})
}

func TestHandleTogglePermitted(t *testing.T) {
	newRequest := func(body string) *http.Request {
		req := requestWithIdentity("PATCH", "/api/v1/passwords/3/users/2", body, alice)
		return withMuxVars(req, map[string]string{"passwordId": "3", "userId": "2"})
	}
	owner := func() (*MockPasswordsStore, *MockAuthzStore) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(true)
		return passwords, authz
	}

	t.Run("flips permitted", func(t *testing.T) {
		passwords, authz := owner()
		passwords.On("SetPermitted", uint(3), uint(2), false).
			Return(&store.Toggle{PasswordID: 3, UserID: 2, Permitted: false}, nil)

		w := httptest.NewRecorder()
		handleTogglePermitted(passwords, authz, zap.NewNop())(w, newRequest(`{"permitted":false}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"password_id":3,"user_id":2,"permitted":false}}`, w.Body.String())
	})

	t.Run("missing link returns empty data", func(t *testing.T) {
		passwords, authz := owner()
		passwords.On("SetPermitted", uint(3), uint(2), true).Return(nil, nil)

		w := httptest.NewRecorder()
		handleTogglePermitted(passwords, authz, zap.NewNop())(w, newRequest(`{"permitted":true}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("permitted is required", func(t *testing.T) {
		passwords, authz := owner()

		w := httptest.NewRecorder()
		handleTogglePermitted(passwords, authz, zap.NewNop())(w, newRequest(`{}`))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		passwords.AssertNotCalled(t, "SetPermitted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("only the owner toggles", func(t *testing.T) {
		passwords := NewMockPasswordsStore()
		authz := NewMockAuthzStore()
		passwords.On("PasswordExists", uint(3)).Return(true, nil)
		authz.On("OwnsPassword", alice.UserID, uint(3)).Return(false)

		w := httptest.NewRecorder()
		handleTogglePermitted(passwords, authz, zap.NewNop())(w, newRequest(`{"permitted":true}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandleAllowedUsers(t *testing.T) {
	passwords := NewMockPasswordsStore()
	authz := NewMockAuthzStore()
	passwords.On("PasswordExists", uint(3)).Return(true, nil)
	authz.On("OwnsPassword", alice.UserID, uint(3)).Return(true)
	passwords.On("AllowedUsers", alice.UserID, uint(3)).Return(nil, nil)

	req := withMuxVars(requestWithIdentity("GET", "/api/v1/passwords/3/allowed_users", "", alice), map[string]string{"id": "3"})
	w := httptest.NewRecorder()
	handleAllowedUsers(passwords, authz, zap.NewNop())(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}
