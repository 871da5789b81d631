// Package repotest provides migrated throwaway databases for repository tests.
package repotest

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/tradeauth/internal/server/migrations"
)

// NewSQLite opens a file-backed SQLite database in t.TempDir() with foreign
// keys enabled and the full schema applied. It is closed on test cleanup.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "tradeauth.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dir, _ := migrations.Dir("sqlite")
	sub, err := fs.Sub(migrations.FS, dir)
	require.NoError(t, err)
	p, err := goose.NewProvider(goose.DialectSQLite3, db, sub)
	require.NoError(t, err)
	_, err = p.Up(context.Background())
	require.NoError(t, err)

	return db
}
