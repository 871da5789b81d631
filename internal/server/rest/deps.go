package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/server/models"
	"github.com/dmitrijs2005/tradeauth/internal/server/services"
)

// AuthService is the part of services.AuthService the API needs.
type AuthService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.RegisterResult, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	ValidateSession(ctx context.Context, token string) (*models.SessionInfo, error)
	Logout(ctx context.Context, token string)
}

type ResetService interface {
	RequestReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Metrics interface {
	ObserveHTTP(route, method string, status int, elapsed time.Duration)
	RecordLoginThrottled()
	Handler() http.Handler
}
