package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Env holds process settings taken from the environment.
type Env struct {
	LogFile         string
	LogLevel        string
	RefreshInterval time.Duration
}

// LoadEnv reads settings from the environment, loading a .env file from the
// working directory first when one exists. Variables already set win.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		LogFile:         getEnv("UBERLOG_LOG_FILE", "uberlog.log"),
		LogLevel:        strings.ToLower(getEnv("UBERLOG_LOG_LEVEL", "info")),
		RefreshInterval: getEnvAsDuration("UBERLOG_REFRESH_INTERVAL", 2*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
