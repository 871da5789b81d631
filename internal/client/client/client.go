// Package client talks to the tradeauth HTTP API and manages the CLI's local
// state database.
package client

import (
	"context"
	"time"
)

// Client is the remote API used by the CLI services.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, login, password string) (*Session, error)
	Session(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, token string) error
	RequestReset(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, token, newPassword, confirmPassword string) error
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name,omitempty"`
	Company         string `json:"company,omitempty"`
}

type RegisterResult struct {
	UserID           int64  `json:"user_id"`
	PasswordStrength string `json:"password_strength"`
}

// Session describes an authenticated user. Token is empty when the value
// came from the session endpoint rather than from login.
type Session struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	Token     string    `json:"session_token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
