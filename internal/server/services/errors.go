package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Callers switch on it to pick a response;
// the message is safe to show to end users.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuth
	KindSessionInvalid
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindSessionInvalid:
		return "session_invalid"
	case KindStorage:
		return "storage"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the only error type returned by AuthService and ResetService.
// The wrapped cause is for logs and errors.Is; it is never part of Message.
type Error struct {
	Kind     Kind
	Message  string
	Problems []string
	cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the Kind of a service error, or 0 if err is not one.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

const (
	msgInvalidCredentials = "invalid credentials or inactive account"
	msgInvalidSession     = "session is invalid or expired"
	msgInvalidResetToken  = "invalid or expired reset token"
	msgAccountExists      = "username or email already exists"
	msgStorage            = "storage error, please try again later"
)

func validationError(msg string, problems ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Problems: problems}
}

func storageError(cause error) *Error {
	return &Error{Kind: KindStorage, Message: msgStorage, cause: cause}
}
