package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNew_JSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Output: &buf})
	log.Info().Msg("hello")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["service"] != ServiceName {
		t.Errorf("expected service %q, got %v", ServiceName, line["service"])
	}
	if line["message"] != "hello" {
		t.Errorf("expected message hello, got %v", line["message"])
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "error", Format: "json", Output: &buf})
	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info line to be filtered, got %q", buf.String())
	}
}
