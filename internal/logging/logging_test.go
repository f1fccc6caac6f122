package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	l.Info("hidden")
	l.Warn("shown %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] test: shown 1") {
		t.Errorf("missing warn line: %q", out)
	}
}

func TestLoggerFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf}).
		WithComponent("asset").
		WithField("tool", "lint")

	l.Debug("loaded")

	if !strings.Contains(buf.String(), "loaded {component=asset, tool=lint}") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	l := Null()
	l.Error("nothing")
	l.WithField("k", "v").Error("still nothing")

	var nilLogger *Logger
	nilLogger.Info("no panic")
}
