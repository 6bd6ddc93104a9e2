package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/enemresultados/internal/db"
)

// NewTestDB returns an in-memory record store with the production schema.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty :memory: database
	conn.SetMaxOpenConns(1)

	_, err = db.Migrate(context.Background(), conn)
	require.NoError(t, err, "failed to migrate test database")
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
