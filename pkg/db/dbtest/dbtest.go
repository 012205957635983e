// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
)

// Open returns an in-memory database with the full schema. The pool is
// pinned to one connection so every query sees the same memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()

	u := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePassword inserts a password owned by owner.
func CreatePassword(t testing.TB, db *gorm.DB, owner *model.User, name string) *model.Password {
	t.Helper()

	p := &model.Password{Name: name, Password: "secret-" + name, Description: name + " login"}
	require.NoError(t, db.Create(p).Error)
	LinkPassword(t, db, p, owner, true, true)
	return p
}

// LinkPassword inserts a password_user row.
func LinkPassword(t testing.TB, db *gorm.DB, p *model.Password, u *model.User, owner, permitted bool) {
	t.Helper()

	require.NoError(t, db.Create(&model.PasswordUser{
		PasswordID: p.ID,
		UserID:     u.ID,
		Owner:      owner,
		Permitted:  permitted,
	}).Error)
}

// CreateGroup inserts a group owned by owner.
func CreateGroup(t testing.TB, db *gorm.DB, owner *model.User, name string) *model.Group {
	t.Helper()

	g := &model.Group{Name: name}
	require.NoError(t, db.Create(g).Error)
	LinkGroup(t, db, g, owner, true, true)
	return g
}

// LinkGroup inserts a group_user row.
func LinkGroup(t testing.TB, db *gorm.DB, g *model.Group, u *model.User, owner, permitted bool) {
	t.Helper()

	require.NoError(t, db.Create(&model.GroupUser{
		GroupID:   g.ID,
		UserID:    u.ID,
		Owner:     owner,
		Permitted: permitted,
	}).Error)
}

// PlaceInGroup inserts a group_password row.
func PlaceInGroup(t testing.TB, db *gorm.DB, g *model.Group, p *model.Password) {
	t.Helper()

	require.NoError(t, db.Create(&model.GroupPassword{GroupID: g.ID, PasswordID: p.ID}).Error)
}
