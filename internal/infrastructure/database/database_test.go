package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := New(config.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "nested", "brain.db")}, DialectSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteMigrations(t *testing.T) {
	db := openSQLite(t)

	status, err := db.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, MigrationStatus{}, status)

	require.NoError(t, db.MigrateUp())
	require.NoError(t, db.MigrateUp(), "second run is a no-op")

	status, err = db.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.Version)
	assert.False(t, status.Dirty)

	var count int
	require.NoError(t, db.DB.Get(&count, "SELECT COUNT(*) FROM kv_entries"))
	assert.Zero(t, count)

	require.NoError(t, db.MigrateDown())
	_, err = db.DB.Exec("SELECT COUNT(*) FROM kv_entries")
	assert.Error(t, err)
}

func TestHealthCheckAndInfo(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, db.HealthCheck(context.Background()))
	info := db.GetConnectionInfo()
	assert.Equal(t, DialectSQLite, info["dialect"])
	assert.Equal(t, 1, info["max_open_connections"])
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	_, err := New(config.DatabaseConfig{}, "oracle")
	assert.Error(t, err)
}
