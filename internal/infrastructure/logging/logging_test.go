package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
)

func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(NewMavenHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestMavenHandler_Format(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.With("system", "planner").Info("optimization failed", "generation", 4, "error", errors.New("No data for state"))

	line := strings.TrimSuffix(buf.String(), "\n")
	assert.Regexp(t, regexp.MustCompile(`^\[INFO\] \[planner\] \[\d{2}:\d{2}:\d{2}\] optimization failed generation=4 error="No data for state"$`), line)
}

func TestMavenHandler_Level(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestMavenHandler_GroupsAndAttrs(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)

	logger.With("session", "abc").WithGroup("quote").Debug("price",
		"crop", "Rice",
		"value", 1850,
		slog.Group("source", "warning", "Using national average"),
		"took", 1500*time.Millisecond,
	)

	out := buf.String()
	assert.Contains(t, out, " price session=abc quote.crop=Rice quote.value=1850 quote.source.warning=\"Using national average\" quote.took=1.5s")
}

func TestMavenHandler_NoColorsForBuffers(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.Error("boom")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "info", Format: "json"})
	logger.Info("report rendered", "format", "pdf")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "report rendered", entry["msg"])
	assert.Equal(t, "pdf", entry["format"])
}

func TestNewLoggerWithSystem(t *testing.T) {
	logger := NewLoggerWithSystem(config.LoggingConfig{Level: "debug"}, "api")
	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
