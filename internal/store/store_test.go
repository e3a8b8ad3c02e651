package store

import (
	"context"
	"testing"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, room domain.Room) domain.Room {
	t.Helper()
	out, err := NewRooms(db).Insert(context.Background(), room)
	require.NoError(t, err)
	return out
}
