package account

import (
	"strings"
	"testing"
)

func TestUsernameProblem(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jane_doe-1", ""},
		{"", "username is required"},
		{"ab", "username must be at least 3 characters"},
		{strings.Repeat("a", 51), "username must be at most 50 characters"},
		{"jane doe", "username can only contain letters, numbers, underscores, and hyphens"},
		{"jane@doe", "username can only contain letters, numbers, underscores, and hyphens"},
	}
	for _, tc := range cases {
		if got := UsernameProblem(tc.in); got != tc.want {
			t.Errorf("UsernameProblem(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmailProblem(t *testing.T) {
	if msg := EmailProblem("a.b+c@example.co"); msg != "" {
		t.Errorf("valid email rejected: %s", msg)
	}
	if msg := EmailProblem(strings.Repeat("a", 95) + "@x.com"); msg != "email is too long" {
		t.Errorf("long email: got %q", msg)
	}
	if msg := EmailProblem("jane@localhost"); msg != "invalid email format" {
		t.Errorf("no tld: got %q", msg)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("jane", "jane@example.com", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		name, username, email, password, want string
	}{
		{"short password", "jane", "jane@example.com", "12345", "password must be at least 6 characters"},
		{"bad username", "j d", "jane@example.com", "secret", "username can only contain letters, numbers, underscores, and hyphens"},
		{"bad email", "jane", "jane.example.com", "secret", "invalid email format"},
		{"password checked first", "", "", "", "password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.username, tc.email, tc.password)
			if err == nil || err.Error() != tc.want {
				t.Errorf("got %v, want %q", err, tc.want)
			}
		})
	}
}
