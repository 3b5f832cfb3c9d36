package main

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

func TestLoggedAtRange(t *testing.T) {
	args := pgx.NamedArgs{}
	where, err := loggedAtRange("2026-06-01", "2026-06-07", args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "user_id = @userID AND logged_at >= @start AND logged_at < @end" {
		t.Errorf("where = %q", where)
	}
	// end is inclusive, so the bound is the following midnight
	if got := args["end"].(time.Time); !got.Equal(time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end bound = %v", got)
	}
}

func TestLoggedAtRange_Optional(t *testing.T) {
	where, err := loggedAtRange("", "", pgx.NamedArgs{})
	if err != nil || where != "user_id = @userID" {
		t.Errorf("got %q, %v", where, err)
	}
}

func TestLoggedAtRange_Invalid(t *testing.T) {
	cases := []struct{ start, end string }{
		{"2026/06/01", ""},
		{"", "tomorrow"},
		{"2026-06-08", "2026-06-01"},
	}
	for _, tc := range cases {
		if _, err := loggedAtRange(tc.start, tc.end, pgx.NamedArgs{}); err == nil {
			t.Errorf("loggedAtRange(%q, %q): expected error", tc.start, tc.end)
		}
	}
}
