// Package logging configures the shared logrus setup: JSON output, level
// from the environment, and a service field on every entry.
package logging

import (
	"github.com/sirupsen/logrus"

	"outreach/pkg/config"
)

// Logger is the logger handle passed through constructors.
type Logger = *logrus.Logger

// Fields carries structured log fields.
type Fields = logrus.Fields

// NewLogger returns a JSON logger at the level LOG_LEVEL selects.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	logger.SetLevel(config.GetLogLevel())
	return logger
}

// NewLoggerWithService returns a logger that stamps every entry with the
// service name.
func NewLoggerWithService(serviceName string) *logrus.Logger {
	logger := NewLogger()
	logger.AddHook(&serviceHook{service: serviceName})
	return logger
}

// serviceHook injects the service name into each entry.
type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = h.service
	return nil
}
