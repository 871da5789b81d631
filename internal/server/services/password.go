package services

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const specialChars = `!@#$%^&*(),.?":{}|<>`

const minPasswordLength = 8

// Strength is an informational grading of a password.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// ValidEmail reports whether email has the local@domain.tld shape accepted at
// registration.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// CheckPassword scores password against the five strength rules and returns
// the unmet ones. A password is acceptable only when problems is empty.
// Letter and digit classes are ASCII only; other runes count toward length.
func CheckPassword(password string) (problems []string, strength Strength) {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
		if strings.ContainsRune(specialChars, r) {
			hasSpecial = true
		}
	}

	rules := []struct {
		ok      bool
		problem string
	}{
		{utf8.RuneCountInString(password) >= minPasswordLength, "password must be at least 8 characters long"},
		{hasUpper, "password must contain an uppercase letter"},
		{hasLower, "password must contain a lowercase letter"},
		{hasDigit, "password must contain a digit"},
		{hasSpecial, `password must contain a special character (!@#$%^&*(),.?":{}|<>)`},
	}

	score := 0
	for _, rule := range rules {
		if rule.ok {
			score++
		} else {
			problems = append(problems, rule.problem)
		}
	}

	switch {
	case score <= 2:
		strength = StrengthWeak
	case score <= 4:
		strength = StrengthMedium
	default:
		strength = StrengthStrong
	}
	return problems, strength
}

// HashPassword returns the lowercase hex SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
