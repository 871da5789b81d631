// Package common contains shared constants, sentinel errors and small helpers
// used by both the tradeauth server and its CLI client.
package common

// SessionTokenHeaderName is the HTTP header carrying a session token as
// "Bearer <token>".
const SessionTokenHeaderName = "Authorization"

// SessionCookieName is the cookie the HTTP API sets on login.
const SessionCookieName = "session_token"

// Defaults for the client metadata recorded with each session.
const (
	UnknownClientAddress = "unknown"
	UnknownClientAgent   = "unknown"
)
