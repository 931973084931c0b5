package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"guest-dashboard-guard/pkg/model"
)

var userColumns = []string{"id", "name", "is_admin", "system_generated", "password_hash", "created_at"}

func newMockUsers(t *testing.T) (*Users, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return NewUsers(gdb), mock
}

func TestUsers_ListUsers(t *testing.T) {
	users, mock := newMockUsers(t)
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `users` ORDER BY id").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("admin", "Owner", true, false, "", now).
			AddRow("g1", "Guest", false, false, "", now).
			AddRow("sys", "Supervisor", false, true, "", now))

	got, err := users.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].IsAdmin)
	assert.Equal(t, "Guest", got[1].Name)
	assert.True(t, got[2].SystemGenerated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_ListUsersError(t *testing.T) {
	users, mock := newMockUsers(t)
	mock.ExpectQuery("FROM `users`").WillReturnError(errors.New("connection refused"))

	_, err := users.ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_FindUser(t *testing.T) {
	users, mock := newMockUsers(t)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE name = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("admin", "Owner", true, false, "hash", time.Now()))

	u, ok, err := users.FindUser(context.Background(), "Owner")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "admin", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_FindUserNotFound(t *testing.T) {
	users, mock := newMockUsers(t)
	mock.ExpectQuery("FROM `users` WHERE name = \\?").WillReturnRows(sqlmock.NewRows(userColumns))

	_, ok, err := users.FindUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_CreateUserHashesPassword(t *testing.T) {
	users, mock := newMockUsers(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, err := users.CreateUser(context.Background(), model.User{ID: "admin", Name: "Owner", IsAdmin: true}, "s3cret")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_CreateUserRequiresID(t *testing.T) {
	users, _ := newMockUsers(t)
	_, err := users.CreateUser(context.Background(), model.User{Name: "x"}, "")
	assert.Error(t, err)
}
