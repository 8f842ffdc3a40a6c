package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON %q: %v", buf.String(), err)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "WARN", "json")

	Get().Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("INFO written at WARN level: %q", buf.String())
	}
	Get().Warn("kept", "k", "v")
	out := decodeLine(t, &buf)
	if out["msg"] != "kept" || out["k"] != "v" {
		t.Errorf("unexpected record %v", out)
	}
}

func TestSetupWriterText(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "DEBUG", "text")
	WithComponent("cli").Debug("hello", "n", 1)
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "n=1") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}

func TestContextHelpers(t *testing.T) {
	tests := []struct {
		name  string
		build func() *slog.Logger
		key   string
		value string
	}{
		{"component", func() *slog.Logger { return WithComponent("api") }, "component", "api"},
		{"pipeline", func() *slog.Logger { return WithPipeline("thumb") }, "pipeline", "thumb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupWriter(&buf, "INFO", "json")
			tt.build().Info("hello")

			out := decodeLine(t, &buf)
			if out[tt.key] != tt.value {
				t.Errorf("Expected %s %q, got %v", tt.key, tt.value, out[tt.key])
			}
			if out["msg"] != "hello" {
				t.Errorf("Expected msg 'hello', got %v", out["msg"])
			}
		})
	}
}

func TestGetDefaultsWhenUnset(t *testing.T) {
	mu.Lock()
	logger = nil
	mu.Unlock()
	if Get() == nil {
		t.Fatal("Get returned nil logger")
	}
}
