// Package metadata persists the CLI's local key/value state, most notably
// the current session.
package metadata

import (
	"context"
	"time"
)

// Repository is a plain key/value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// StoredSession is what the CLI remembers after a successful login.
type StoredSession struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}
