// Package users is the Credential Store: durable storage and uniqueness
// enforcement for user records.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/server/models"
)

type Repository interface {
	// Create inserts a new trader account and returns it with its ID set.
	// A taken username or email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail looks a user up by email only.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindForLogin returns the active user whose username or email is login
	// and whose password hash equals passwordHash. Unknown user, wrong hash
	// and inactive account all yield the same common.ErrorNotFound.
	FindForLogin(ctx context.Context, login, passwordHash string) (*models.User, error)

	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}
