package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/dmitrijs2005/tradeauth/internal/common"
	"github.com/dmitrijs2005/tradeauth/internal/dbx"
	"github.com/dmitrijs2005/tradeauth/internal/server/models"
)

const userColumns = `id, username, email, password_hash, full_name, company, role, account_type,
		created_at, last_login, is_active, email_verified, two_factor_enabled`

// SQLRepository implements Repository on top of dbx.DBTX for any supported dialect.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := r.dialect.Rebind(
		`INSERT INTO users (username, email, password_hash, full_name, company, role, account_type,
		 created_at, is_active, email_verified, two_factor_enabled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`)

	user.Role = models.RoleTrader
	user.AccountType = models.DefaultAccountType
	user.IsActive = true
	user.EmailVerified = false
	user.TwoFactorEnabled = false

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, nullString(user.FullName), nullString(user.Company),
		string(user.Role), user.AccountType, user.CreatedAt,
		user.IsActive, user.EmailVerified, user.TwoFactorEnabled,
	).Scan(&user.ID)

	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, oops.Code("USER_CONFLICT").
				With("username", user.Username).
				Wrap(common.ErrorConflict)
		}
		return nil, oops.Code("USER_CREATE_FAILED").
			With("username", user.Username).
			Wrapf(err, "db error")
	}

	return user, nil
}

func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT ` + userColumns + ` FROM users WHERE email = ?`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oops.Code("USER_NOT_FOUND").Wrap(common.ErrorNotFound)
		}
		return nil, oops.Code("USER_FIND_FAILED").Wrapf(err, "db error")
	}
	return user, nil
}

func (r *SQLRepository) FindForLogin(ctx context.Context, login, passwordHash string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT ` + userColumns + ` FROM users
		 WHERE (username = ? OR email = ?) AND password_hash = ? AND is_active = ?
		 ORDER BY id LIMIT 1`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, login, login, passwordHash, true))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oops.Code("USER_NOT_FOUND").Wrap(common.ErrorNotFound)
		}
		return nil, oops.Code("USER_FIND_FAILED").Wrapf(err, "db error")
	}
	return user, nil
}

func (r *SQLRepository) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	query := r.dialect.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return oops.Code("USER_TOUCH_FAILED").With("user_id", userID).Wrapf(err, "db error")
	}
	return nil
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := r.dialect.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return oops.Code("USER_PASSWORD_UPDATE_FAILED").With("user_id", userID).Wrapf(err, "db error")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("USER_PASSWORD_UPDATE_FAILED").With("user_id", userID).Wrapf(err, "db error")
	}
	if n == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", userID).Wrap(common.ErrorNotFound)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u         models.User
		role      string
		fullName  sql.NullString
		company   sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &fullName, &company, &role,
		&u.AccountType, &u.CreatedAt, &lastLogin, &u.IsActive, &u.EmailVerified, &u.TwoFactorEnabled)
	if err != nil {
		return nil, err
	}

	u.Role = models.Role(role)
	u.FullName = fullName.String
	u.Company = company.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
