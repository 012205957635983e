package identity

import (
	"context"
	"net"
	"time"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated user for a request.
type Identity struct {
	UserID uint
	Name   string
	Email  string
	Role   model.Role

	// Token claims
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// FromUser creates an Identity from a loaded user record.
func FromUser(u *model.User) *Identity {
	return &Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// WithToken sets the token timestamps.
func (i *Identity) WithToken(issuedAt, expiresAt time.Time) *Identity {
	i.IssuedAt = issuedAt
	i.ExpiresAt = expiresAt
	return i
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// IsAdmin returns true if the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Roles returns the role names held by the identity.
func (i *Identity) Roles() []string {
	return []string{i.Role.String()}
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
