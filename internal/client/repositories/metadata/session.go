package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/dbx"
)

const (
	keySessionToken   = "session_token"
	keySessionUser    = "session_username"
	keySessionExpires = "session_expires_at"
)

// SessionStore keeps a single StoredSession in the metadata table.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save replaces the stored session atomically.
func (s *SessionStore) Save(ctx context.Context, sess StoredSession) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keySessionToken, []byte(sess.Token)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keySessionUser, []byte(sess.Username)); err != nil {
			return err
		}
		return repo.Set(ctx, keySessionExpires, []byte(sess.ExpiresAt.UTC().Format(time.RFC3339Nano)))
	})
}

// Load returns the stored session, or nil when none is stored.
func (s *SessionStore) Load(ctx context.Context) (*StoredSession, error) {
	repo := NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, keySessionToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, nil
	}

	user, err := repo.Get(ctx, keySessionUser)
	if err != nil {
		return nil, err
	}

	sess := &StoredSession{Token: string(token), Username: string(user)}

	raw, err := repo.Get(ctx, keySessionExpires)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		t, err := time.Parse(time.RFC3339Nano, string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse stored expiry: %w", err)
		}
		sess.ExpiresAt = t
	}
	return sess, nil
}

// Clear forgets the stored session. It is a no-op when nothing is stored.
func (s *SessionStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, k := range []string{keySessionToken, keySessionUser, keySessionExpires} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}
