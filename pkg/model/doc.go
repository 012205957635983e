// Package model defines the database models for pwstore.
//
// This package contains GORM models that map to the pwstore database schema.
// The schema is managed by the SQL migrations under db/migrations for
// PostgreSQL; SQLite databases are created from these models with
// AutoMigrate.
//
// # Core Models
//
//   - User: account holders with exactly one Role (admin or user)
//   - Password: a stored credential; the secret is kept as entered
//   - Group: a named folder of passwords
//
// # Link Tables
//
// Access is expressed through many-to-many link records:
//
//   - password_user: users linked to passwords, flagged owner/permitted
//   - group_user: users linked to groups, flagged owner/permitted
//   - group_password: passwords placed in a group (at most one per password)
package model
