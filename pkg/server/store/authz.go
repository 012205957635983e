package store

import (
	"context"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
)

// AuthzStore abstracts authorization checks. Lookups that fail count as
// not allowed.
type AuthzStore interface {
	// OwnsPassword checks if a user holds the owner link of a password.
	OwnsPassword(ctx context.Context, userID, passwordID uint) bool

	// CanViewPassword checks if the actor is an admin or holds a permitted
	// link to a password.
	CanViewPassword(ctx context.Context, actor *identity.Identity, passwordID uint) bool

	// OwnsGroup checks if a user holds the owner link of a group.
	OwnsGroup(ctx context.Context, userID, groupID uint) bool

	// CanChangeGroup checks if a user owns a password and every group named
	// in a group change. Nil groups are not checked.
	CanChangeGroup(ctx context.Context, userID, passwordID uint, fromGroupID, toGroupID *uint) bool
}
