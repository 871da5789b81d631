// Package sessions is the Session Store: persistent bearer tokens that
// reference users.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	// Validate resolves token to its owner if the session exists and expires
	// strictly after now. Missing and expired sessions both yield
	// common.ErrInvalidSession.
	Validate(ctx context.Context, token string, now time.Time) (*models.SessionInfo, error)
	// Delete removes the session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) error
}
