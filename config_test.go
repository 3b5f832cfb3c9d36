package main

import (
	"reflect"
	"testing"

	"metafit/go-api/energy"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"DB_URL", "ADDR", "CORS_ALLOWED_ORIGINS", "OPENAI_BASE_URL", "OPENAI_API_KEY", "OPENAI_MODEL",
		"LOGIN_RATE_LIMIT_RPS", "LOGIN_RATE_LIMIT_BURST",
		"OTHER_GENDER_BMR", "OTHER_GENDER_MACROS",
	} {
		t.Setenv(k, "")
	}

	cfg := loadConfig()
	if cfg.Addr != "localhost:8000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com" {
		t.Errorf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.OpenAIAPIKey != "" || cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAI key/model = %q/%q", cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.LoginRateLimitRPS != 5 || cfg.LoginRateLimitBurst != 10 {
		t.Errorf("rate limit = %d/%d, want 5/10", cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst)
	}
	if cfg.Energy != energy.Default {
		t.Errorf("Energy = %+v, want %+v", cfg.Energy, energy.Default)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("OPENAI_BASE_URL", "http://127.0.0.1:9999/")
	t.Setenv("LOGIN_RATE_LIMIT_RPS", "2")
	t.Setenv("LOGIN_RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("OTHER_GENDER_BMR", "female")
	t.Setenv("OTHER_GENDER_MACROS", "Male")

	cfg := loadConfig()
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.OpenAIBaseURL != "http://127.0.0.1:9999" {
		t.Errorf("trailing slash not trimmed: %q", cfg.OpenAIBaseURL)
	}
	if cfg.LoginRateLimitRPS != 2 {
		t.Errorf("LoginRateLimitRPS = %d, want 2", cfg.LoginRateLimitRPS)
	}
	if cfg.LoginRateLimitBurst != 10 {
		t.Errorf("malformed burst should fall back to 10, got %d", cfg.LoginRateLimitBurst)
	}
	want := energy.Model{OtherBMR: energy.Female, OtherMacros: energy.Male}
	if cfg.Energy != want {
		t.Errorf("Energy = %+v, want %+v", cfg.Energy, want)
	}
}
