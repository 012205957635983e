package store

import (
	"context"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
)

// UserSummary is a user as offered in the share picker
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UsersStore abstracts user storage operations
type UsersStore interface {
	// CreateUser stores a new user. PasswordHash must already be set.
	// Returns ErrDuplicateEmail if the email is in use.
	CreateUser(ctx context.Context, user *model.User) error

	// FindUser returns a user by id.
	// Returns ErrUserNotFound if the user doesn't exist.
	FindUser(ctx context.Context, userID uint) (*model.User, error)

	// FindUserByEmail returns a user by email.
	// Returns ErrUserNotFound if the user doesn't exist.
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)

	// ListShareableUsers returns users with the user role, other than the
	// actor.
	ListShareableUsers(ctx context.Context, actorID uint) ([]UserSummary, error)

	// MissingUserIDs returns the ids in userIDs that match no user.
	MissingUserIDs(ctx context.Context, userIDs []uint) ([]uint, error)
}
