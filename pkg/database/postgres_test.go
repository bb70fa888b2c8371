package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p@ss word", Name: "att", SSLMode: "require"})
	assert.Equal(t, "postgres://u:p%40ss%20word@db:5433/att?sslmode=require", dsn)

	assert.Contains(t, DSN(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Name: "att"}), "sslmode=disable")
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "000001_init_schema.down.sql", entries[0].Name())
}

func TestNewSQLiteCreatesRosterTable(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM staff_members"))
	assert.Zero(t, count)
}
