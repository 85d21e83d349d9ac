package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug allowed at debug", LevelDebug, LevelDebug, true},
		{"info allowed at debug", LevelDebug, LevelInfo, true},
		{"warn allowed at debug", LevelDebug, LevelWarn, true},
		{"error allowed at debug", LevelDebug, LevelError, true},
		{"debug blocked at info", LevelInfo, LevelDebug, false},
		{"info allowed at info", LevelInfo, LevelInfo, true},
		{"warn allowed at info", LevelInfo, LevelWarn, true},
		{"debug blocked at warn", LevelWarn, LevelDebug, false},
		{"info blocked at warn", LevelWarn, LevelInfo, false},
		{"warn allowed at warn", LevelWarn, LevelWarn, true},
		{"error allowed at warn", LevelWarn, LevelError, true},
		{"info blocked at error", LevelError, LevelInfo, false},
		{"warn blocked at error", LevelError, LevelWarn, false},
		{"error allowed at error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&buf)
			logger.SetLevel(tt.minLevel)

			switch tt.logLevel {
			case LevelDebug:
				logger.Debug("test message")
			case LevelInfo:
				logger.Info("test message")
			case LevelWarn:
				logger.Warn("test message")
			case LevelError:
				logger.Error("test message")
			}

			if tt.shouldLog {
				assert.Contains(t, buf.String(), "test message")
			} else {
				assert.Empty(t, buf.String(), "expected no log output")
			}
		})
	}
}

func TestLoggerDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())
	assert.False(t, logger.Enabled(LevelInfo))
	assert.True(t, logger.Enabled(LevelWarn))

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)

	child := logger.With("component", "sync")
	child.Warn("poll failed")

	output := buf.String()
	assert.Contains(t, output, "poll failed")
	assert.Contains(t, output, `"component": "sync"`)

	buf.Reset()
	logger.Warn("from parent")
	assert.NotContains(t, buf.String(), "component")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)

	child := logger.WithFields(map[string]interface{}{
		"component": "controller",
		"attempt":   2,
	})
	child.Error("command failed")

	output := buf.String()
	assert.Contains(t, output, "ERROR")
	assert.Contains(t, output, `"component": "controller"`)
	assert.Contains(t, output, `"attempt": 2`)
}

func TestLoggerInlineKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)

	logger.Warn("request failed", "url", "http://localhost:8000/status", "error", errors.New("connection refused"))

	output := buf.String()
	assert.Contains(t, output, `"url": "http://localhost:8000/status"`)
	assert.Contains(t, output, `"error": "connection refused"`)
}

func TestLoggerOddKeyValuesDropsDanglingKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)

	logger.Warn("odd", "key", "value", "dangling")

	output := buf.String()
	assert.Contains(t, output, `"key": "value"`)
	assert.NotContains(t, output, "dangling")
}

func TestLoggerSetOutputKeepsFields(t *testing.T) {
	var first, second bytes.Buffer
	logger := NewWithWriter(&first).With("component", "tui")

	logger.SetOutput(&second)
	logger.Warn("redirected")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "redirected")
	assert.Contains(t, second.String(), `"component": "tui"`)
}

func TestLoggerChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)
	child := logger.With("k", "v")

	logger.SetLevel(LevelDebug)
	child.Debug("now visible")

	assert.Contains(t, buf.String(), "now visible")
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Error("nothing")
	assert.False(t, logger.Enabled(LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelWarn, true},
		{"", LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer func() {
		SetLevel(LevelWarn)
		SetOutput(&bytes.Buffer{})
	}()

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	With("k", "v").Warn("with")
	WithFields(map[string]interface{}{"a": 1}).Warn("fields")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 6)
	assert.Same(t, defaultLogger, Default())
}
