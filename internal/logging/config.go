package logging

import (
	"os"
	"strings"
)

// Config controls logger initialization.
type Config struct {
	// ServiceName identifies the service emitting logs.
	ServiceName string

	// Environment is the deployment environment (development, staging, production).
	Environment string

	// LogLevel controls verbosity (debug, info, warn, error).
	// Defaults to "info" if empty or invalid.
	LogLevel string

	// OutputPath is stdout, stderr, or a file path. Defaults to "stdout".
	OutputPath string
}

// IsDevelopment returns true if environment is development.
func (c Config) IsDevelopment() bool {
	return strings.ToLower(c.Environment) == "development"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
