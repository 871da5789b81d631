// Package repomanager vends dialect-aware repositories bound to a *sql.DB or
// *sql.Tx and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/tradeauth/internal/dbx"
	"github.com/dmitrijs2005/tradeauth/internal/server/migrations"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/resets"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/users"
)

// SQLRepositoryManager serves both SQLite and PostgreSQL; the dialect decides
// placeholders, constraint error mapping and the migration set.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	dir     string
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Resets(db dbx.DBTX) resets.Repository {
	return resets.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies every pending embedded migration for the manager's
// backend.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(gooseDialect(m.dialect)); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.dir); err != nil {
		return err
	}
	return nil
}

// NewSQLRepositoryManager constructs a manager for a dialect returned by
// dbx.DialectFor.
func NewSQLRepositoryManager(dialect dbx.Dialect) (*SQLRepositoryManager, error) {
	dir, ok := migrations.Dir(dialect.Name())
	if !ok {
		return nil, fmt.Errorf("no migrations for dialect %q", dialect.Name())
	}
	return &SQLRepositoryManager{dialect: dialect, dir: dir}, nil
}

func gooseDialect(d dbx.Dialect) string {
	if d == dbx.SQLite {
		return "sqlite3"
	}
	return "pgx"
}
