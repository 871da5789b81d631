// Package dbx holds the small database/sql helpers shared by the tradeauth
// repositories: the DBTX handle satisfied by both *sql.DB and *sql.Tx, a
// transaction runner, and per-backend dialects.
package dbx

import (
	"context"
	"database/sql"

	"github.com/samber/oops"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction and commits when fn returns nil. An
// error from fn is returned as is after a rollback, so callers can still match
// their sentinels. Begin and commit failures carry the TX_BEGIN_FAILED and
// TX_COMMIT_FAILED oops codes. A panic in fn rolls back and is rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := repos.Resets(tx).MarkUsed(ctx, id); err != nil {
//	        return err
//	    }
//	    return repos.Users(tx).UpdatePassword(ctx, userID, hash)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrapf(err, "begin transaction")
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrapf(err, "commit transaction")
	}
	committed = true
	return nil
}
