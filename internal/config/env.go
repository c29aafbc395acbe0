package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv merges a best-effort .env file into the process environment.
// Secrets stay out of the YAML file; a missing .env is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

// APIKey resolves the recognizer API key from the environment, preferring the
// app-scoped variable over the generic one.
func APIKey() string {
	if key := strings.TrimSpace(os.Getenv("DISAPPILITY_OPENAI_API_KEY")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}
