// Package config reads configuration from the process environment, with
// optional .env files for local development.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv overlays variables from local env files onto the process
// environment. ENV_FILE names an explicit file; otherwise .env and
// .env.dev are tried in order. Missing files are not an error: deployed
// environments configure through the process environment alone.
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.dev"}
	if explicit := strings.TrimSpace(os.Getenv("ENV_FILE")); explicit != "" {
		files = []string{explicit}
	}

	var loaded []string
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger == nil {
		return
	}
	if len(loaded) == 0 {
		logger.Debug("No env files found; using process environment")
		return
	}
	logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
}

// GetEnv returns the variable's value, or defaultValue when unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt parses the variable as an integer. Unset, empty, or
// unparseable values fall back to defaultValue.
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetEnvBool parses the variable as a boolean, accepting the
// strconv.ParseBool forms. Unset, empty, or unparseable values fall
// back to defaultValue.
func GetEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetLogLevel reads LOG_LEVEL. Anything logrus does not recognize,
// including an unset variable, means info.
func GetLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// RequireEnv fetches a variable and exits the process if it is empty.
// Only for configuration the service cannot run without.
func RequireEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		logrus.Fatalf("environment variable %s is required but not set", key)
	}
	return value
}
