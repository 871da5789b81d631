// Package common defines shared constants and sentinel errors used across
// client and server layers of tradeauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Session lifecycle errors. Missing and expired sessions share one value.
	ErrInvalidSession = errors.New("invalid session")

	// Password reset lifecycle errors.
	ErrTokenUsed    = errors.New("token already used")
	ErrTokenExpired = errors.New("token expired")
)
