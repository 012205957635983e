package gorm

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

func TestHealthStore_CheckConnectivity(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewHealthStore(db)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, s.CheckConnectivity(context.Background()))

	mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("connection refused"))
	assert.Error(t, s.CheckConnectivity(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthzStore_OwnsPasswordQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewAuthzStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "password_user" WHERE password_id = \$1 AND user_id = \$2 AND owner = \$3`).
		WithArgs(5, 7, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	assert.True(t, s.OwnsPassword(context.Background(), 7, 5))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "password_user"`).
		WillReturnError(errors.New("boom"))
	assert.False(t, s.OwnsPassword(context.Background(), 7, 5), "lookup failure denies")

	assert.NoError(t, mock.ExpectationsWereMet())
}
