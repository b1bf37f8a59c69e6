package docxgen

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name           string
		level          LogLevel
		expectedOutput []string
		notExpected    []string
	}{
		{
			name:           "debug level shows all messages",
			level:          LogDebug,
			expectedOutput: []string{"[DEBUG] debug message", "[INFO] info message", "[WARN] warn message", "[ERROR] error message"},
		},
		{
			name:           "info level hides debug messages",
			level:          LogInfo,
			expectedOutput: []string{"[INFO] info message", "[WARN] warn message", "[ERROR] error message"},
			notExpected:    []string{"debug message"},
		},
		{
			name:           "error level shows only errors",
			level:          LogError,
			expectedOutput: []string{"[ERROR] error message"},
			notExpected:    []string{"debug message", "info message", "warn message"},
		},
		{
			name:        "off level shows nothing",
			level:       LogOff,
			notExpected: []string{"message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")
			logger.Error("error message")

			output := buf.String()
			for _, expected := range tt.expectedOutput {
				if !strings.Contains(output, expected) {
					t.Errorf("Expected output to contain %q, but it didn't.\nOutput: %s", expected, output)
				}
			}
			for _, notExpected := range tt.notExpected {
				if strings.Contains(output, notExpected) {
					t.Errorf("Expected output NOT to contain %q, but it did.\nOutput: %s", notExpected, output)
				}
			}
		})
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogDebug))

	Debug("test debug")
	Info("test info")
	Warn("test warn")
	Error("test error")

	output := buf.String()
	for _, expected := range []string{
		"[DEBUG] test debug",
		"[INFO] test info",
		"[WARN] test warn",
		"[ERROR] test error",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, but it didn't.\nOutput: %s", expected, output)
		}
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogDebug)

	logger.
		WithField("paragraph", 3).
		WithFields(Fields{
			"action": "add_text",
			"bytes":  42,
		}).
		Info("Processing delta")

	// Fields are sorted by key
	want := "Processing delta action=add_text bytes=42 paragraph=3"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("Expected output to contain %q.\nOutput: %s", want, buf.String())
	}
}

func TestLoggerChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&buf, LogWarn)
	child := parent.WithField("k", "v")

	child.Info("hidden")
	child.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("child logged below the parent's level")
	}
	if !strings.Contains(buf.String(), "[WARN] shown k=v") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		"INFO":    LogInfo,
		"warn":    LogWarn,
		"error":   LogError,
		"off":     LogOff,
		"unknown": LogInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
