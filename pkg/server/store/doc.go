// Package store provides storage abstractions for the pwstore server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// Endpoint tests use testify mocks of these interfaces; the server uses the
// GORM implementations in the gorm subpackage.
//
// # Available Stores
//
//   - PasswordsStore: listing, CRUD, group changes, sharing and the permission toggle
//   - GroupsStore: group CRUD with cascading delete
//   - UsersStore: user records and the share picker
//   - AuthzStore: ownership and visibility checks
//   - HealthStore: database connectivity
//
// # Usage
//
//	passwords := gorm.NewPasswordsStore(db, logger)
//	detail, err := passwords.FetchPassword(ctx, actor, 42)
//	if err != nil {
//	    if errors.Is(err, store.ErrPasswordNotFound) {
//	        // Handle not found
//	    }
//	}
package store
