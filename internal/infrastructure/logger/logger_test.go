package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "chatty", Format: "json"})
	assert.Error(t, err)
}

func TestNewBuildsBothFormats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(config.LoggerConfig{Level: "debug", Format: format, Output: "stderr"})
		require.NoError(t, err, format)
		assert.NotNil(t, l.SugaredLogger)
	}
}

func TestLogInvocationFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).WithComponent("registry")

	l.LogInvocation("tool", "get-tasks", 1500*time.Microsecond, nil)
	l.LogInvocation("tool", "add-task", time.Millisecond, errors.New("title is required"))

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "get-tasks", first["tool"])
	assert.Equal(t, "registry", first["component"])
	assert.InDelta(t, 1.5, first["duration_ms"], 0.001)

	second := entries[1].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "title is required", second["error"])
}

func TestLogHTTPRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).WithRequestID("req-42")

	l.LogHTTPRequest("POST", "/api/v1/tools/add-task", "curl/8", "10.0.0.1", 200, 2.5, nil)
	l.LogHTTPRequest("POST", "/api/v1/tools/add-task", "curl/8", "10.0.0.1", 500, 3, errors.New("disk full"))

	entries := logs.All()
	require.Len(t, entries, 2)

	served := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-42", served["request_id"])
	assert.Equal(t, "/api/v1/tools/add-task", served["path"])
	assert.EqualValues(t, 200, served["status_code"])
	assert.NotContains(t, served, "error")

	failed := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "HTTP request failed", entries[1].Message)
	assert.Equal(t, "req-42", failed["request_id"])
	assert.Equal(t, "disk full", failed["error"])
}
