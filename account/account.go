// Package account holds the credential rules shared by registration, the
// availability checks and the create-user tool.
package account

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	MinPasswordLen = 6
	MinUsernameLen = 3
	MaxUsernameLen = 50
	MaxEmailLen    = 100
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// UsernameProblem returns a user-facing message when username is malformed,
// or "" when it is acceptable.
func UsernameProblem(username string) string {
	switch {
	case username == "":
		return "username is required"
	case len(username) < MinUsernameLen:
		return fmt.Sprintf("username must be at least %d characters", MinUsernameLen)
	case len(username) > MaxUsernameLen:
		return fmt.Sprintf("username must be at most %d characters", MaxUsernameLen)
	case !usernamePattern.MatchString(username):
		return "username can only contain letters, numbers, underscores, and hyphens"
	}
	return ""
}

func EmailProblem(email string) string {
	switch {
	case email == "":
		return "email is required"
	case len(email) > MaxEmailLen:
		return "email is too long"
	case !emailPattern.MatchString(email):
		return "invalid email format"
	}
	return ""
}

func PasswordProblem(password string) string {
	if len(password) < MinPasswordLen {
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLen)
	}
	return ""
}

// Validate checks all three credentials, password first, and returns the
// first problem found.
func Validate(username, email, password string) error {
	for _, msg := range []string{PasswordProblem(password), UsernameProblem(username), EmailProblem(email)} {
		if msg != "" {
			return errors.New(msg)
		}
	}
	return nil
}
