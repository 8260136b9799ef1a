package publish

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Failure taxonomy for publishing adapters. Callers inspect these with
// errors.Is; the orchestration layer never retries a publish on its own
// because a failed attempt may have partially gone through.
var (
	// ErrValidation: malformed input (e.g. a bad schedule timestamp).
	// Raised before any network or browser action.
	ErrValidation = errors.New("validation failure")

	// ErrAuthentication: missing or rejected platform credentials.
	// Fails fast, no retry.
	ErrAuthentication = errors.New("authentication failure")

	// ErrAutomation: the platform's interface could not be driven to
	// completion (login flow broke, expected control not found, upload
	// rejected mid-flight).
	ErrAutomation = errors.New("automation failure")
)

// Result reports the outcome of one publish attempt.
type Result struct {
	Success      bool
	PlatformRef  string
	ScheduledFor *time.Time
	ErrorDetail  string
}

// Credentials are read from environment configuration, two variables per
// platform.
type Credentials struct {
	Login    string
	Password string
}

func (c Credentials) complete() bool {
	return c.Login != "" && c.Password != ""
}

// ParseScheduleTime parses an optional ISO-8601 schedule timestamp. An
// empty string means "publish now" and yields nil. A malformed value is
// an ErrValidation, rejected before any side effect is attempted.
func ParseScheduleTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid schedule time %q, use ISO format (YYYY-MM-DDTHH:MM:SS)", ErrValidation, raw)
}

func failed(err error) Result {
	return Result{Success: false, ErrorDetail: err.Error()}
}
