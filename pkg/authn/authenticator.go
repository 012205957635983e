package authn

import (
	"context"
	"errors"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// Registration is the input for creating an account.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// Authenticator checks credentials against stored users.
type Authenticator struct {
	users store.UsersStore
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(users store.UsersStore) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate returns the user matching email and password.
// Returns store.ErrInvalidCredentials on any mismatch.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, store.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, store.ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a user with a hashed password.
// Returns store.ErrDuplicateEmail if the email is in use.
func (a *Authenticator) Register(ctx context.Context, in Registration) (*model.User, error) {
	user := &model.User{
		Name:  in.Name,
		Email: in.Email,
		Role:  in.Role,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
