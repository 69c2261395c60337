// Package testutil holds shared helpers for tests that need a database.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ibam/backend/config"
	"ibam/backend/models"
	"ibam/backend/store"
)

// NewTestDB opens a migrated in-memory SQLite database. A single connection
// keeps the in-memory database alive for the whole test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, store.Migrate(db))
	return db
}

// NewFileTestDB opens a migrated SQLite database file that allows several
// connections, for tests that write concurrently. Transactions take the write
// lock when they begin and wait for it instead of failing with SQLITE_BUSY.
func NewFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate",
		filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, store.Migrate(db))
	return db
}

// SeedCurriculum inserts every catalogue session and returns them in id order.
func SeedCurriculum(t *testing.T, db *gorm.DB, cur config.Curriculum) []models.Session {
	t.Helper()
	_, err := store.New(db).SeedSessions(t.Context(), cur)
	require.NoError(t, err)
	var sessions []models.Session
	require.NoError(t, db.Order("id").Find(&sessions).Error)
	return sessions
}

// CreateUser inserts a user whose password is the given plaintext.
func CreateUser(t *testing.T, db *gorm.DB, email, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Email: email, PasswordHash: string(hash), FullName: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	require.NotEqual(t, uuid.Nil, user.ID)
	return user
}

// AddProgress stores a progress row accessed at the given time.
func AddProgress(t *testing.T, db *gorm.DB, userID uuid.UUID, sessionID, pct int, at time.Time) models.UserProgress {
	t.Helper()
	up := models.UserProgress{
		UserID:               userID,
		SessionID:            sessionID,
		CompletionPercentage: pct,
		LastAccessedAt:       at,
	}
	if pct == 100 {
		up.CompletedAt = &at
	}
	require.NoError(t, db.Create(&up).Error)
	return up
}
