package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/tradeauth/internal/client/migrations"
	"github.com/dmitrijs2005/tradeauth/internal/dbx"
)

var gooseUpContext = goose.UpContext

// RunMigrations brings the local state schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// OpenStateDB opens the local SQLite state file and migrates it.
func OpenStateDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, _, err := dbx.Open(ctx, "sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return db, nil
}
