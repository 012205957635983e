package store

import "errors"

// ErrPasswordNotFound is returned when a password doesn't exist
var ErrPasswordNotFound = errors.New("password not found")

// ErrGroupNotFound is returned when a group doesn't exist
var ErrGroupNotFound = errors.New("group not found")

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// ErrForbidden is returned when the acting user may not perform an action
var ErrForbidden = errors.New("this action is unauthorized")

// ErrDuplicateName is returned when the acting user already owns an entity
// with the requested name
var ErrDuplicateName = errors.New("name has already been taken")

// ErrDuplicateEmail is returned when registering an email already in use
var ErrDuplicateEmail = errors.New("email has already been taken")

// ErrInvalidCredentials is returned when a login does not match a user
var ErrInvalidCredentials = errors.New("invalid credentials")
