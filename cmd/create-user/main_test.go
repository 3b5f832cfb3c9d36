package main

import (
	"strings"
	"testing"

	"metafit/go-api/energy"
)

func TestParseProfile(t *testing.T) {
	p, err := parseProfile("1996-03-01", "Female", "5.5", "Lightly Active", "maintain weight", "61.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Gender != energy.Female || p.ActivityLevel != energy.LightlyActive || p.Goal != energy.MaintainWeight {
		t.Errorf("labels not parsed: %+v", p)
	}
	if p.HeightFt != 5.5 || p.WeightKg != 61.5 || p.DateOfBirth.Year() != 1996 {
		t.Errorf("numbers not parsed: %+v", p)
	}
}

func TestParseProfile_Rejects(t *testing.T) {
	cases := []struct {
		name                                   string
		dob, gender, height, activity, goal, w string
	}{
		{"bad dob", "03/01/1996", "male", "5.7", "sedentary", "weight loss", "70"},
		{"bad height", "1996-03-01", "male", "tall", "sedentary", "weight loss", "70"},
		{"zero height", "1996-03-01", "male", "0", "sedentary", "weight loss", "70"},
		{"bad activity", "1996-03-01", "male", "5.7", "couch", "weight loss", "70"},
		{"bad goal", "1996-03-01", "male", "5.7", "sedentary", "bulk", "70"},
		{"bad weight", "1996-03-01", "male", "5.7", "sedentary", "weight loss", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseProfile(tc.dob, tc.gender, tc.height, tc.activity, tc.goal, tc.w); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// scripted answers prompts in order.
func scripted(answers ...string) func(string) string {
	return func(string) string {
		a := answers[0]
		answers = answers[1:]
		return a
	}
}

func TestReadAccount(t *testing.T) {
	username, email, name, _, err := readAccount(scripted("jane_doe", "Jane@Example.com", "Jane", "secret1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "jane_doe" || email != "jane@example.com" || name != "Jane" {
		t.Errorf("got %q %q %q", username, email, name)
	}
}

func TestReadAccount_Rejects(t *testing.T) {
	cases := []struct {
		name                      string
		username, email, password string
		wantMsg                   string
	}{
		{"short password", "jane", "jane@example.com", "12345", "password must be at least 6"},
		{"short username", "jd", "jane@example.com", "secret1", "at least 3"},
		{"long username", strings.Repeat("a", 51), "jane@example.com", "secret1", "at most 50"},
		{"username with space", "jane doe", "jane@example.com", "secret1", "can only contain"},
		{"bad email", "jane", "not-an-email", "secret1", "invalid email format"},
		{"long email", "jane", strings.Repeat("a", 95) + "@x.com", "secret1", "too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, _, err := readAccount(scripted(tc.username, tc.email, "Jane", tc.password))
			if err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("got %v, want error containing %q", err, tc.wantMsg)
			}
		})
	}
}
