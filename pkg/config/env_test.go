package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetEnvFallsBackWhenUnset(t *testing.T) {
	t.Setenv("OUTREACH_TEST_STR", "")
	if got := GetEnv("OUTREACH_TEST_STR", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("OUTREACH_TEST_STR", "set")
	if got := GetEnv("OUTREACH_TEST_STR", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("OUTREACH_TEST_INT", "")
	if got := GetEnvInt("OUTREACH_TEST_INT", 8); got != 8 {
		t.Fatalf("expected default 8, got %d", got)
	}
	t.Setenv("OUTREACH_TEST_INT", "12")
	if got := GetEnvInt("OUTREACH_TEST_INT", 8); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("OUTREACH_TEST_INT", "twelve")
	if got := GetEnvInt("OUTREACH_TEST_INT", 8); got != 8 {
		t.Fatalf("expected default on garbage, got %d", got)
	}
}

func TestGetEnvBoolIgnoresGarbage(t *testing.T) {
	t.Setenv("OUTREACH_TEST_BOOL", "")
	if !GetEnvBool("OUTREACH_TEST_BOOL", true) {
		t.Fatal("expected default true")
	}
	t.Setenv("OUTREACH_TEST_BOOL", "false")
	if GetEnvBool("OUTREACH_TEST_BOOL", true) {
		t.Fatal("expected false")
	}
	t.Setenv("OUTREACH_TEST_BOOL", "maybe")
	if !GetEnvBool("OUTREACH_TEST_BOOL", true) {
		t.Fatal("expected default on garbage")
	}
}

func TestGetLogLevelParsesLogrusLevels(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"loud":    logrus.InfoLevel,
	}
	for value, want := range cases {
		t.Setenv("LOG_LEVEL", value)
		if got := GetLogLevel(); got != want {
			t.Fatalf("LOG_LEVEL=%q: expected %v, got %v", value, want, got)
		}
	}
}

func TestLoadEnvHonorsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.env")
	if err := os.WriteFile(file, []byte("OUTREACH_TEST_FROM_FILE=yes\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", file)
	t.Setenv("OUTREACH_TEST_FROM_FILE", "")

	LoadEnv(logrus.New())
	if got := os.Getenv("OUTREACH_TEST_FROM_FILE"); got != "yes" {
		t.Fatalf("expected value from env file, got %q", got)
	}
}

func TestLoadEnvWithoutFilesIsQuiet(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	LoadEnv(logrus.New())
	LoadEnv(nil)
}
