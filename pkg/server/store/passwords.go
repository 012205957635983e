package store

import (
	"context"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/access"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
)

// NewPassword is the input for creating a password.
type NewPassword struct {
	Name         string
	Password     string
	Description  string
	GroupID      uint // zero leaves the password ungrouped
	AllowedUsers []uint
}

// PasswordChanges is the input for updating a password. An empty Password
// keeps the stored secret. ToGroupID follows the reassign placement
// sentinels.
type PasswordChanges struct {
	Name         string
	Password     string
	Description  string
	ToGroupID    int64
	AllowedUsers []uint
}

// CreatedPassword is the result of creating a password
type CreatedPassword struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	Description string `json:"description"`
	Owner       bool   `json:"owner"`
	Group       *uint  `json:"group,omitempty"`
}

// UpdatedPassword is the result of updating a password
type UpdatedPassword struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Updated     string `json:"updated"`
}

// PasswordDetail is a single password with the secret
type PasswordDetail struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Password    string  `json:"password"`
	Description string  `json:"description"`
	Owner       bool    `json:"owner"`
	Updated     string  `json:"updated"`
	Groups      []Group `json:"groups"`
}

// Toggle is the stored state of one user's permitted flag on a password
type Toggle struct {
	PasswordID uint `json:"password_id"`
	UserID     uint `json:"user_id"`
	Permitted  bool `json:"permitted"`
}

// PasswordsStore abstracts password storage and the link mutations around it.
// Multi-step mutations are atomic.
type PasswordsStore interface {
	// ListVisible returns the passwords and groups the actor can see.
	ListVisible(ctx context.Context, actor *identity.Identity) (access.View, error)

	// PasswordExists checks if a password exists
	PasswordExists(ctx context.Context, passwordID uint) (bool, error)

	// FetchPassword returns a password with its secret and groups.
	// Returns ErrPasswordNotFound if the password doesn't exist.
	FetchPassword(ctx context.Context, actor *identity.Identity, passwordID uint) (*PasswordDetail, error)

	// CreatePassword creates a password owned by the actor, shares it with
	// the allowed users and places it in the given group.
	CreatePassword(ctx context.Context, actor *identity.Identity, in NewPassword) (*CreatedPassword, error)

	// UpdatePassword applies field changes, the allowed-users diff and the
	// group placement in one transaction.
	// Returns ErrPasswordNotFound if the password doesn't exist.
	UpdatePassword(ctx context.Context, actor *identity.Identity, passwordID uint, in PasswordChanges) (*UpdatedPassword, error)

	// DeletePassword removes a password and all of its links.
	// Returns ErrPasswordNotFound if the password doesn't exist.
	DeletePassword(ctx context.Context, passwordID uint) error

	// ChangeGroup moves a password between groups. A nil group is absent.
	// Returns reassign.ErrNoTransition if both groups are nil.
	ChangeGroup(ctx context.Context, passwordID uint, fromGroupID, toGroupID *uint) error

	// SetPermitted overwrites the permitted flag of an existing link.
	// Returns nil, nil if the user is not linked to the password.
	SetPermitted(ctx context.Context, passwordID, userID uint, permitted bool) (*Toggle, error)

	// AllowedUsers returns the ids of users linked to a password, other
	// than the actor.
	AllowedUsers(ctx context.Context, actor *identity.Identity, passwordID uint) ([]uint, error)

	// PasswordNameTaken checks if ownerID owns a password called name,
	// other than ignoreID.
	PasswordNameTaken(ctx context.Context, ownerID uint, name string, ignoreID uint) (bool, error)
}
