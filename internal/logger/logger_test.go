package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &StdLogger{
		logger: log.New(&buf, "", 0),
		level:  LevelDebug,
	}

	tests := []struct {
		name     string
		fn       func()
		expected string
	}{
		{
			name:     "Info",
			fn:       func() { l.Info("test message") },
			expected: "[INFO] test message",
		},
		{
			name:     "Warn",
			fn:       func() { l.Warn("warning message") },
			expected: "[WARN] warning message",
		},
		{
			name:     "Error",
			fn:       func() { l.Error("error message") },
			expected: "[ERROR] error message",
		},
		{
			name:     "Debug",
			fn:       func() { l.Debug("debug message") },
			expected: "[DEBUG] debug message",
		},
		{
			name:     "Info with args",
			fn:       func() { l.Info("ignoring %s=%q", "VERSION_MAJOR", "x") },
			expected: `[INFO] ignoring VERSION_MAJOR="x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn()
			got := strings.TrimSpace(buf.String())
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)
	l.Error("shown %d", 2)

	got := strings.TrimSpace(buf.String())
	want := "vista: [WARN] shown 1\nvista: [ERROR] shown 2"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	l := NewStdLogger()
	if l.level != LevelWarn {
		t.Errorf("got level %v, want %v", l.level, LevelWarn)
	}
	if got := l.logger.Prefix(); got != "vista: " {
		t.Errorf("got prefix %q, want %q", got, "vista: ")
	}
	if _, ok := Default.(*StdLogger); !ok {
		t.Errorf("got Default of type %T, want *StdLogger", Default)
	}

	Nop.Error("dropped")
}
