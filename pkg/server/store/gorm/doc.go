// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// This package contains concrete implementations that use GORM for database
// operations. Multi-step mutations are built as ledger steps and applied in
// one transaction. The same code runs on PostgreSQL and on SQLite.
package gorm
