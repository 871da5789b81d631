package resets

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/dmitrijs2005/tradeauth/internal/common"
	"github.com/dmitrijs2005/tradeauth/internal/dbx"
	"github.com/dmitrijs2005/tradeauth/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, reset *models.PasswordReset) (*models.PasswordReset, error) {
	query := r.dialect.Rebind(
		`INSERT INTO password_resets (user_id, reset_token, created_at, expires_at, used)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`)

	reset.Used = false
	err := r.db.QueryRowContext(ctx, query,
		reset.UserID, reset.TokenHash, reset.CreatedAt, reset.ExpiresAt, reset.Used,
	).Scan(&reset.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, oops.Code("RESET_CONFLICT").With("user_id", reset.UserID).Wrap(common.ErrorConflict)
		}
		return nil, oops.Code("RESET_CREATE_FAILED").With("user_id", reset.UserID).Wrapf(err, "db error")
	}
	return reset, nil
}

func (r *SQLRepository) FindByToken(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	query := r.dialect.Rebind(
		`SELECT id, user_id, reset_token, created_at, expires_at, used
		 FROM password_resets
		 WHERE reset_token = ?`)

	var reset models.PasswordReset
	err := r.db.QueryRowContext(ctx, query, tokenHash).
		Scan(&reset.ID, &reset.UserID, &reset.TokenHash, &reset.CreatedAt, &reset.ExpiresAt, &reset.Used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oops.Code("RESET_NOT_FOUND").Wrap(common.ErrorNotFound)
		}
		return nil, oops.Code("RESET_FIND_FAILED").Wrapf(err, "db error")
	}
	return &reset, nil
}

func (r *SQLRepository) MarkUsed(ctx context.Context, id int64) error {
	query := r.dialect.Rebind(`UPDATE password_resets SET used = ? WHERE id = ? AND used = ?`)

	res, err := r.db.ExecContext(ctx, query, true, id, false)
	if err != nil {
		return oops.Code("RESET_MARK_USED_FAILED").With("reset_id", id).Wrapf(err, "db error")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("RESET_MARK_USED_FAILED").With("reset_id", id).Wrapf(err, "db error")
	}
	if n == 0 {
		return oops.Code("RESET_ALREADY_USED").With("reset_id", id).Wrap(common.ErrTokenUsed)
	}
	return nil
}
