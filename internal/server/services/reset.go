package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/common"
	"github.com/dmitrijs2005/tradeauth/internal/dbx"
	"github.com/dmitrijs2005/tradeauth/internal/logging"
	"github.com/dmitrijs2005/tradeauth/internal/server/config"
	"github.com/dmitrijs2005/tradeauth/internal/server/models"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tradeauth/internal/timex"
)

const resetTokenBytes = 32

// ResetService issues and redeems single-use password reset tokens.
type ResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokenTTL    time.Duration
	now         timex.Clock
	log         logging.Logger
	metrics     Recorder
}

// NewResetService constructs a ResetService. rec may be nil.
func NewResetService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger, rec Recorder) *ResetService {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &ResetService{
		db:          db,
		repomanager: m,
		tokenTTL:    cfg.ResetTokenTTL,
		now:         timex.UTCNow,
		log:         log.With("module", "reset"),
		metrics:     rec,
	}
}

// RequestReset creates a reset token for the active account registered under
// email and returns it. For any other address it returns "" and no error so
// callers cannot learn which emails exist.
func (s *ResetService) RequestReset(ctx context.Context, email string) (token string, err error) {
	defer func() { s.metrics.RecordAuth("reset_request", outcome(err)) }()

	email = strings.TrimSpace(email)
	if email == "" {
		return "", validationError("email is required")
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "reset requested for unknown email")
			return "", nil
		}
		logging.LogError(ctx, s.log, "reset lookup failed", err)
		return "", storageError(err)
	}
	if !user.IsActive {
		s.log.Info(ctx, "reset requested for unknown email")
		return "", nil
	}

	token, err = common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		logging.LogError(ctx, s.log, "reset token generation failed", err)
		return "", storageError(err)
	}

	now := s.now()
	reset := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: hashToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if _, err := s.repomanager.Resets(s.db).Create(ctx, reset); err != nil {
		logging.LogError(ctx, s.log, "reset create failed", err, "user_id", user.ID)
		return "", storageError(err)
	}

	s.log.Info(ctx, "password reset issued", "user_id", user.ID, "expires_at", reset.ExpiresAt)
	return token, nil
}

// ResetPassword redeems token and sets a new password. On success the token
// is spent and every session of the user is closed.
func (s *ResetService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) (err error) {
	defer func() { s.metrics.RecordAuth("reset_confirm", outcome(err)) }()

	if token == "" || newPassword == "" {
		return validationError("reset token and new password are required")
	}
	if problems, _ := CheckPassword(newPassword); len(problems) > 0 {
		return validationError("password does not meet requirements", problems...)
	}
	if confirmPassword != "" && confirmPassword != newPassword {
		return validationError("passwords do not match")
	}

	reset, err := s.repomanager.Resets(s.db).FindByToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &Error{Kind: KindAuth, Message: msgInvalidResetToken, cause: err}
		}
		logging.LogError(ctx, s.log, "reset lookup failed", err)
		return storageError(err)
	}
	if !reset.Usable(s.now()) {
		cause := common.ErrTokenExpired
		if reset.Used {
			cause = common.ErrTokenUsed
		}
		s.log.Warn(ctx, "unusable reset token presented", "user_id", reset.UserID, "reason", cause.Error())
		return &Error{Kind: KindAuth, Message: msgInvalidResetToken, cause: cause}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Resets(tx).MarkUsed(ctx, reset.ID); err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, reset.UserID, HashPassword(newPassword)); err != nil {
			return err
		}
		return s.repomanager.Sessions(tx).DeleteByUser(ctx, reset.UserID)
	})
	if err != nil {
		if errors.Is(err, common.ErrTokenUsed) {
			return &Error{Kind: KindAuth, Message: msgInvalidResetToken, cause: err}
		}
		logging.LogError(ctx, s.log, "password reset failed", err, "user_id", reset.UserID)
		return storageError(err)
	}

	s.log.Info(ctx, "password reset completed", "user_id", reset.UserID)
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
