package store

import (
	"context"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
)

// Group is a group as returned to clients
type Group struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// GroupsStore abstracts group storage operations
type GroupsStore interface {
	// ListGroups returns the groups the actor is linked to.
	ListGroups(ctx context.Context, actor *identity.Identity) ([]Group, error)

	// GroupExists checks if a group exists
	GroupExists(ctx context.Context, groupID uint) (bool, error)

	// FetchGroup returns a group.
	// Returns ErrGroupNotFound if the group doesn't exist.
	FetchGroup(ctx context.Context, groupID uint) (*Group, error)

	// CreateGroup returns the actor's group called name, creating it and
	// the actor's owner link if it doesn't exist.
	CreateGroup(ctx context.Context, actor *identity.Identity, name string) (*Group, error)

	// RenameGroup changes a group's name.
	// Returns ErrGroupNotFound if the group doesn't exist.
	RenameGroup(ctx context.Context, groupID uint, name string) (*Group, error)

	// DeleteGroup deletes a group together with every password placed in
	// it and all of their links.
	// Returns ErrGroupNotFound if the group doesn't exist.
	DeleteGroup(ctx context.Context, groupID uint) error

	// GroupNameTaken checks if ownerID owns a group called name, other
	// than ignoreID.
	GroupNameTaken(ctx context.Context, ownerID uint, name string, ignoreID uint) (bool, error)
}
