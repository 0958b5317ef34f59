package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"Warning", WarnLevel},
		{"warn", WarnLevel},
		{" error ", ErrorLevel},
		{"bogus", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if got := Level(42).String(); got != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q, want UNKNOWN", got)
	}
	if got := WarnLevel.String(); got != "WARN" {
		t.Errorf("WarnLevel.String() = %q, want WARN", got)
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := Switch("S1"); f.Key != "switch" || f.Value != "S1" {
		t.Errorf("Switch() = %+v", f)
	}
	if f := Bus("B1"); f.Key != "bus" || f.Value != "B1" {
		t.Errorf("Bus() = %+v", f)
	}
	if f := Duration("took", 2*time.Second); f.Value != "2s" {
		t.Errorf("Duration() = %+v", f)
	}
	if f := Error(errors.New("boom")); f.Value != "boom" {
		t.Errorf("Error() = %+v", f)
	}
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message", Bus("bus_connected0"))
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Fields["bus"] != "bus_connected0" {
		t.Errorf("First entry = %+v", entries[0])
	}
	if entries[1].Level != "ERROR" {
		t.Errorf("Second entry level = %v, want ERROR", entries[1].Level)
	}
}

func TestJSONLogger_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewJSONLogger(&buf, InfoLevel)
	child := root.With(Component("topology"))

	root.SetLevel(ErrorLevel)
	child.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("Expected no output after raising root level, got %q", buf.String())
	}

	child.Error("kept", Operation("close"), Component("override"))
	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Fields["component"] != "override" {
		t.Errorf("component field = %v, want call-site override", entries[0].Fields["component"])
	}
	if entries[0].Fields["operation"] != "close" {
		t.Errorf("operation field = %v, want close", entries[0].Fields["operation"])
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "rebuild", Count(3))
	timer.End(Generation("g1"))
	timer.EndError(errors.New("failed"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("End() did not record latency")
	}
	if entries[0].Fields["generation"] != "g1" {
		t.Errorf("generation field = %v", entries[0].Fields["generation"])
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "failed" {
		t.Errorf("EndError() entry = %+v", entries[1])
	}
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, DebugLevel))
	defer SetDefaultLogger(nil)

	DefaultLogger().Debug("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("DefaultLogger did not use replacement logger: %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.With(Switch("S1")).Error("ignored")
	if logger.GetLevel() != InfoLevel {
		t.Errorf("NopLogger level = %v", logger.GetLevel())
	}
}
