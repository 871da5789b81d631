package sessions

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

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	query := r.dialect.Rebind(
		`INSERT INTO sessions (user_id, session_token, created_at, expires_at, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.Token, s.CreatedAt, s.ExpiresAt, s.IPAddress, s.UserAgent,
	).Scan(&s.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, oops.Code("SESSION_CONFLICT").With("user_id", s.UserID).Wrap(common.ErrorConflict)
		}
		return nil, oops.Code("SESSION_CREATE_FAILED").With("user_id", s.UserID).Wrapf(err, "db error")
	}
	return s, nil
}

func (r *SQLRepository) Validate(ctx context.Context, token string, now time.Time) (*models.SessionInfo, error) {
	query := r.dialect.Rebind(
		`SELECT u.id, u.username, u.email, u.full_name, u.role, s.expires_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.session_token = ?`)

	var (
		info     models.SessionInfo
		fullName sql.NullString
		role     string
	)
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&info.UserID, &info.Username, &info.Email, &fullName, &role, &info.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrInvalidSession
		}
		return nil, oops.Code("SESSION_VALIDATE_FAILED").Wrapf(err, "db error")
	}

	if !info.ExpiresAt.After(now) {
		return nil, common.ErrInvalidSession
	}

	info.FullName = fullName.String
	info.Role = models.Role(role)
	return &info, nil
}

func (r *SQLRepository) Delete(ctx context.Context, token string) error {
	query := r.dialect.Rebind(`DELETE FROM sessions WHERE session_token = ?`)

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").Wrapf(err, "db error")
	}
	return nil
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID int64) error {
	query := r.dialect.Rebind(`DELETE FROM sessions WHERE user_id = ?`)

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").With("user_id", userID).Wrapf(err, "db error")
	}
	return nil
}
