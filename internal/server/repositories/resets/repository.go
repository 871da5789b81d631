// Package resets stores single-use password reset tokens. Only the SHA-256
// hash of a token is ever persisted.
package resets

import (
	"context"

	"github.com/dmitrijs2005/tradeauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, reset *models.PasswordReset) (*models.PasswordReset, error)
	FindByToken(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	// MarkUsed flips used from false to true. It returns common.ErrTokenUsed if
	// the reset was already consumed.
	MarkUsed(ctx context.Context, id int64) error
}
