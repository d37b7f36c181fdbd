// Package testutil provides throwaway databases and Redis servers for tests.
package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/obutuz/Miley/internal/db"
	"github.com/obutuz/Miley/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A second connection would see a different empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// CreateUser stores an active user with a profile of the given type.
func CreateUser(t *testing.T, gdb *gorm.DB, username, password, profileType string) *domain.User {
	t.Helper()
	user := domain.User{Username: username, Email: username + "@example.com", IsActive: true}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, gdb.Omit("Profile").Create(&user).Error)
	user.Profile = domain.Profile{UserID: user.ID, ProfileType: profileType}
	require.NoError(t, gdb.Create(&user.Profile).Error)
	return &user
}
