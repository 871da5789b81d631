// Package models holds the persistent records of the credential subsystem.
package models

import "time"

// Role is a user's permission level.
type Role string

const (
	RoleTrader Role = "trader"
	RoleAdmin  Role = "admin"
)

// DefaultAccountType is the tier every new account starts on.
const DefaultAccountType = "standard"

// User is a registered person. PasswordHash is the hex SHA-256 digest of the
// password; the password itself is never stored.
type User struct {
	ID               int64
	Username         string
	Email            string
	PasswordHash     string
	FullName         string
	Company          string
	Role             Role
	AccountType      string
	CreatedAt        time.Time
	LastLogin        *time.Time
	IsActive         bool
	EmailVerified    bool
	TwoFactorEnabled bool
}
