package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// Ensure AuthzStore implements store.AuthzStore
var _ store.AuthzStore = (*AuthzStore)(nil)

// AuthzStore implements store.AuthzStore using GORM
type AuthzStore struct {
	db *gorm.DB
}

// NewAuthzStore creates a new AuthzStore
func NewAuthzStore(db *gorm.DB) *AuthzStore {
	return &AuthzStore{db: db}
}

func (s *AuthzStore) exists(ctx context.Context, m interface{}, query string, args ...interface{}) bool {
	var count int64
	if err := s.db.WithContext(ctx).Model(m).Where(query, args...).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// OwnsPassword checks if a user holds the owner link of a password.
func (s *AuthzStore) OwnsPassword(ctx context.Context, userID, passwordID uint) bool {
	return s.exists(ctx, &model.PasswordUser{},
		"password_id = ? AND user_id = ? AND owner = ?", passwordID, userID, true)
}

// CanViewPassword checks if the actor is an admin or holds a permitted link.
func (s *AuthzStore) CanViewPassword(ctx context.Context, actor *identity.Identity, passwordID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	return s.exists(ctx, &model.PasswordUser{},
		"password_id = ? AND user_id = ? AND permitted = ?", passwordID, actor.UserID, true)
}

// OwnsGroup checks if a user holds the owner link of a group.
func (s *AuthzStore) OwnsGroup(ctx context.Context, userID, groupID uint) bool {
	return s.exists(ctx, &model.GroupUser{},
		"group_id = ? AND user_id = ? AND owner = ?", groupID, userID, true)
}

// CanChangeGroup checks if a user owns a password and each non-nil group.
func (s *AuthzStore) CanChangeGroup(ctx context.Context, userID, passwordID uint, fromGroupID, toGroupID *uint) bool {
	if !s.OwnsPassword(ctx, userID, passwordID) {
		return false
	}
	if fromGroupID != nil && !s.OwnsGroup(ctx, userID, *fromGroupID) {
		return false
	}
	if toGroupID != nil && !s.OwnsGroup(ctx, userID, *toGroupID) {
		return false
	}
	return true
}
