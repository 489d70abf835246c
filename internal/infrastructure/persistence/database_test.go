package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}),
		&gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	db, err := wrap(gdb)
	require.NoError(t, err)
	return db, mock
}

func TestDatabase_Ping(t *testing.T) {
	db, mock := newMockDatabase(t)
	defer db.Close()

	mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(assert.AnError)
	assert.ErrorIs(t, db.Ping(context.Background()), assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_InUse(t *testing.T) {
	db, mock := newMockDatabase(t)
	defer db.Close()

	mock.ExpectBegin()
	tx := db.DB.Begin()
	require.NoError(t, tx.Error)
	assert.Equal(t, 1, db.InUse())

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback().Error)
	assert.Zero(t, db.InUse())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "ltb", DBName: "ltb", SSLMode: "disable",
		MaxOpenConns: 1, MaxIdleConns: 1,
	}, nil)
	assert.Error(t, err)
}
