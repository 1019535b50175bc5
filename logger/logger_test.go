package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/remiges-tech/txnsim/logger"
)

func TestParsePriority(t *testing.T) {
	cases := map[string]logharbour.LogPriority{
		"info":   logharbour.Info,
		"DEBUG0": logharbour.Debug0,
		" warn ": logharbour.Warn,
		"err":    logharbour.Err,
		"debug2": logharbour.Debug2,
		"sec":    logharbour.Sec,
		"crit":   logharbour.Crit,
		"debug1": logharbour.Debug1,
	}
	for in, want := range cases {
		got, err := logger.ParsePriority(in)
		if err != nil {
			t.Fatalf("ParsePriority(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParsePriority(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := logger.ParsePriority("verbose"); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}

func TestLoadLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer

	lh, err := logger.LoadLogger("txnsim-test", "warn", &buf)
	if err != nil {
		t.Fatal(err)
	}

	lh.Info().LogActivity("quiet message", nil)
	lh.Warn().LogActivity("loud message", map[string]any{"k": "v"})

	out := buf.String()
	if strings.Contains(out, "quiet message") {
		t.Errorf("Expected info entry to be filtered, got '%s'", out)
	}
	if !strings.Contains(out, "loud message") {
		t.Errorf("Expected 'loud message', got '%s'", out)
	}
}

func TestLoadLoggerUnknownLevel(t *testing.T) {
	if _, err := logger.LoadLogger("txnsim-test", "chatty", &bytes.Buffer{}); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}
