package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"metafit/go-api/energy"
)

// config is the server configuration read from the environment (after
// godotenv has loaded .env, if present).
type config struct {
	DBURL               string
	Addr                string
	CORSAllowedOrigins  []string
	OpenAIBaseURL       string
	OpenAIAPIKey        string
	OpenAIModel         string
	LoginRateLimitRPS   int
	LoginRateLimitBurst int
	Energy              energy.Model
}

// loadConfig reads every setting with its default. Malformed numbers fall
// back to the default and are logged rather than aborting start-up.
func loadConfig() config {
	return config{
		DBURL:               os.Getenv("DB_URL"),
		Addr:                envOr("ADDR", "localhost:8000"),
		CORSAllowedOrigins:  splitList(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		OpenAIBaseURL:       strings.TrimRight(envOr("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         envOr("OPENAI_MODEL", defaultChatModel),
		LoginRateLimitRPS:   envInt("LOGIN_RATE_LIMIT_RPS", 5),
		LoginRateLimitBurst: envInt("LOGIN_RATE_LIMIT_BURST", 10),
		Energy: energy.Model{
			OtherBMR:    energy.ParseGender(envOr("OTHER_GENDER_BMR", string(energy.Male))),
			OtherMacros: energy.ParseGender(envOr("OTHER_GENDER_MACROS", string(energy.Female))),
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
