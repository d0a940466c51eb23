package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration
type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration
	SessionFile string
	Port        string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		APIBaseURL:  getEnv("POUPIX_API_URL", "http://localhost:3002/api"),
		HTTPTimeout: getDuration("POUPIX_TIMEOUT", 10*time.Second),
		SessionFile: getEnv("POUPIX_SESSION_FILE", defaultSessionFile()),
		Port:        getEnv("PORT", "3002"),
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".poupix-session.json"
	}
	return filepath.Join(home, ".poupix-session.json")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDuration retrieves a duration environment variable or returns the
// default when the variable is unset or unparsable
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
