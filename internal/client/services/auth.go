// Package services contains application services for the tradeauth CLI.
// AuthService combines the remote API with the locally stored session.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/tradeauth/internal/client/client"
	"github.com/dmitrijs2005/tradeauth/internal/client/repositories/metadata"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login stores the returned session locally; Logout forgets it even when
//     the server cannot be reached.
//   - WhoAmI asks the server about the stored session and forgets it when
//     the server rejects it.
//   - Reset operations never touch local state.
type AuthService interface {
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResult, error)
	Login(ctx context.Context, login, password string) (*client.Session, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*client.Session, error)
	RequestReset(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, token, newPassword, confirmPassword string) error
}

type sessionStore interface {
	Save(ctx context.Context, s metadata.StoredSession) error
	Load(ctx context.Context) (*metadata.StoredSession, error)
	Clear(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  sessionStore
}

// NewAuthService constructs an AuthService bound to the given API client and
// local state DB.
func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, store: metadata.NewSessionStore(db)}
}

func (a *authService) Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResult, error) {
	return a.client.Register(ctx, req)
}

func (a *authService) Login(ctx context.Context, login, password string) (*client.Session, error) {
	s, err := a.client.Login(ctx, login, password)
	if err != nil {
		return nil, err
	}

	err = a.store.Save(ctx, metadata.StoredSession{
		Token:     s.Token,
		Username:  s.Username,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Logout ends the stored session. Remote failures are returned after the
// local session has been cleared.
func (a *authService) Logout(ctx context.Context) error {
	stored, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if stored == nil {
		return client.ErrNotLoggedIn
	}

	remoteErr := a.client.Logout(ctx, stored.Token)
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	return remoteErr
}

func (a *authService) WhoAmI(ctx context.Context) (*client.Session, error) {
	stored, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, client.ErrNotLoggedIn
	}

	s, err := a.client.Session(ctx, stored.Token)
	if errors.Is(err, client.ErrUnauthorized) {
		if clearErr := a.store.Clear(ctx); clearErr != nil {
			return nil, clearErr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *authService) RequestReset(ctx context.Context, email string) (string, error) {
	return a.client.RequestReset(ctx, email)
}

func (a *authService) ConfirmReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	return a.client.ConfirmReset(ctx, token, newPassword, confirmPassword)
}
