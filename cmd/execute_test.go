package cmd

import (
	"log/slog"
	"testing"
)

func TestCheckRequiredEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if err := checkRequiredEnv(); err == nil {
		t.Error("expected error without GEMINI_API_KEY")
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	if err := checkRequiredEnv(); err != nil {
		t.Errorf("checkRequiredEnv() = %v", err)
	}
}

func TestLogLevel(t *testing.T) {
	t.Setenv("DEBUG", "")
	if got := logLevel(); got != slog.LevelInfo {
		t.Errorf("logLevel() = %v, want info", got)
	}

	t.Setenv("DEBUG", "1")
	if got := logLevel(); got != slog.LevelDebug {
		t.Errorf("logLevel() = %v, want debug", got)
	}
}
