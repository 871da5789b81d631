// Package services contains the server-side business logic of tradeauth:
// registration, login and sessions in AuthService, and forgotten-password
// handling in ResetService. Every failure is returned as *Error.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/common"
	"github.com/dmitrijs2005/tradeauth/internal/logging"
	"github.com/dmitrijs2005/tradeauth/internal/server/config"
	"github.com/dmitrijs2005/tradeauth/internal/server/models"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tradeauth/internal/timex"
)

// sessionTokenBytes of randomness give a 64 character hex token.
const sessionTokenBytes = 32

type RegisterRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Company         string
}

type RegisterResult struct {
	UserID   int64
	Strength Strength
}

type LoginRequest struct {
	// Login is a username or an email address.
	Login         string
	Password      string
	ClientAddress string
	ClientAgent   string
}

type LoginResult struct {
	UserID       int64
	Username     string
	Email        string
	FullName     string
	Role         models.Role
	SessionToken string
	ExpiresAt    time.Time
}

// AuthService registers users, authenticates them and manages their sessions.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessionTTL  time.Duration
	now         timex.Clock
	log         logging.Logger
	metrics     Recorder
}

// NewAuthService constructs an AuthService. rec may be nil.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger, rec Recorder) *AuthService {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		sessionTTL:  cfg.SessionTTL,
		now:         timex.UTCNow,
		log:         log.With("module", "auth"),
		metrics:     rec,
	}
}

// Register validates req and creates a trader account. Checks run in order
// and the first failure is returned.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (res *RegisterResult, err error) {
	defer func() { s.metrics.RecordAuth("register", outcome(err)) }()

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" {
		return nil, validationError("username, email and password are required")
	}
	if !ValidEmail(email) {
		return nil, validationError("invalid email address")
	}
	problems, strength := CheckPassword(req.Password)
	if len(problems) > 0 {
		return nil, validationError("password does not meet requirements", problems...)
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, validationError("passwords do not match")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: HashPassword(req.Password),
		FullName:     strings.TrimSpace(req.FullName),
		Company:      strings.TrimSpace(req.Company),
		CreatedAt:    s.now(),
	}

	created, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			s.log.Info(ctx, "registration conflict", "username", username)
			return nil, &Error{Kind: KindConflict, Message: msgAccountExists, cause: err}
		}
		logging.LogError(ctx, s.log, "register failed", err, "username", username)
		return nil, storageError(err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return &RegisterResult{UserID: created.ID, Strength: strength}, nil
}

// Login authenticates by username or email and opens a new session. Every
// credential mismatch produces the same AuthError.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (res *LoginResult, err error) {
	defer func() { s.metrics.RecordAuth("login", outcome(err)) }()

	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, validationError("login and password are required")
	}

	user, err := s.repomanager.Users(s.db).FindForLogin(ctx, login, HashPassword(req.Password))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "login rejected", "login", login)
			return nil, &Error{Kind: KindAuth, Message: msgInvalidCredentials, cause: err}
		}
		logging.LogError(ctx, s.log, "login lookup failed", err)
		return nil, storageError(err)
	}

	now := s.now()
	if err := s.repomanager.Users(s.db).TouchLastLogin(ctx, user.ID, now); err != nil {
		logging.LogError(ctx, s.log, "last login update failed", err, "user_id", user.ID)
	}

	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		logging.LogError(ctx, s.log, "session token generation failed", err)
		return nil, storageError(err)
	}

	session := &models.Session{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
		IPAddress: orDefault(req.ClientAddress, common.UnknownClientAddress),
		UserAgent: orDefault(req.ClientAgent, common.UnknownClientAgent),
	}
	if _, err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		logging.LogError(ctx, s.log, "session create failed", err, "user_id", user.ID)
		return nil, storageError(err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID, "client_address", session.IPAddress)
	return &LoginResult{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         user.Role,
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// ValidateSession resolves a session token. Unknown and expired tokens are
// reported the same way.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (info *models.SessionInfo, err error) {
	defer func() { s.metrics.RecordAuth("validate_session", outcome(err)) }()

	if token == "" {
		return nil, &Error{Kind: KindSessionInvalid, Message: msgInvalidSession, cause: common.ErrInvalidSession}
	}

	info, err = s.repomanager.Sessions(s.db).Validate(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, common.ErrInvalidSession) {
			return nil, &Error{Kind: KindSessionInvalid, Message: msgInvalidSession, cause: err}
		}
		logging.LogError(ctx, s.log, "session validation failed", err)
		return nil, storageError(err)
	}
	return info, nil
}

// Logout ends the session if it exists. Storage failures are logged only.
func (s *AuthService) Logout(ctx context.Context, token string) {
	defer s.metrics.RecordAuth("logout", "success")

	if token == "" {
		return
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token); err != nil {
		logging.LogError(ctx, s.log, "logout failed", err)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
