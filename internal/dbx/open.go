package dbx

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/tradeauth/internal/filex"
)

// Open opens and pings a database for one of the supported drivers. For
// file-backed SQLite the parent directory is created first.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, ok := DialectFor(driver)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if dialect == SQLite {
		if path, ok := filex.SQLiteFilePath(dsn); ok {
			if err := filex.EnsureParentDir(path); err != nil {
				return nil, nil, err
			}
		}
	}

	db, err := sql.Open(dialect.Name(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, dialect, nil
}
