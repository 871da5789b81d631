package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable is returned when the server could not be reached.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is returned for any 401 answer.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotLoggedIn is returned when no session is stored locally.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError carries the server's error body for a non-2xx answer.
// 401 answers also match ErrUnauthorized through errors.Is.
type APIError struct {
	Status   int
	Message  string
	Problems []string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", e.Status)
	}
	if len(e.Problems) > 0 {
		msg += ": " + strings.Join(e.Problems, "; ")
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}
