package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf))
	l.Info("hello", "key", "value")

	output := buf.String()
	for _, want := range []string{"hello", "key", "value"} {
		if !strings.Contains(output, want) {
			t.Errorf("output %q missing %q", output, want)
		}
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf), WithDebug(true)).Debug("debug msg")
	if !strings.Contains(buf.String(), "debug msg") {
		t.Errorf("debug message missing from %q", buf.String())
	}

	buf.Reset()
	New(WithWriter(&buf), WithDebug(false)).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithJSON(true))
	l.Info("structured", "count", 42)

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if parsed["msg"] != "structured" {
		t.Errorf("msg = %v, want structured", parsed["msg"])
	}
	if parsed["count"] != float64(42) {
		t.Errorf("count = %v, want 42", parsed["count"])
	}
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithPretty(true), WithPrefix("ssechat"))
	l.Info("pretty output", "turn", 1)

	if !strings.Contains(buf.String(), "pretty output") {
		t.Errorf("output %q missing message", buf.String())
	}
}

func TestNew_MultipleWriters(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	New(WithWriters(&buf1, &buf2)).Info("multi")

	if !strings.Contains(buf1.String(), "multi") || !strings.Contains(buf2.String(), "multi") {
		t.Error("expected both writers to receive the record")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded")
	if l.Handler().Enabled(context.Background(), slog.LevelError) {
		t.Error("Nop handler should not be enabled")
	}

	if OrNop(nil) == nil {
		t.Error("OrNop(nil) should return a logger")
	}
	custom := New()
	if OrNop(custom) != custom {
		t.Error("OrNop should return the given logger")
	}
}

func TestCharmLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "debug"},
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
	}
	for _, tt := range tests {
		if got := charmLevel(tt.level).String(); got != tt.want {
			t.Errorf("charmLevel(%v) = %s, want %s", tt.level, got, tt.want)
		}
	}
}
