package models

import "time"

// PasswordReset is a single-use reset token. TokenHash holds the SHA-256 of
// the token handed to the user.
type PasswordReset struct {
	ID        int64
	UserID    int64
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// Usable reports whether the reset can still be honored at now.
func (r *PasswordReset) Usable(now time.Time) bool {
	return !r.Used && now.Before(r.ExpiresAt)
}
