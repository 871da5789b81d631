package models

import "time"

type Session struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

// SessionInfo is what a successful session validation reveals about its owner.
type SessionInfo struct {
	UserID    int64
	Username  string
	Email     string
	FullName  string
	Role      Role
	ExpiresAt time.Time
}
