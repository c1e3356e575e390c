package log_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-yii/framework/config"
	"github.com/km-arc/go-yii/framework/log"
)

func observed(level zapcore.Level) (*log.ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return log.NewZapLogger(zap.New(core)), logs
}

type version struct{}

func (version) String() string { return "v3" }

func TestZapLogger_LevelsAndCategory(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	l.Log(log.LevelInfo, "info message", map[string]any{"category": "info category"})
	l.Log(log.LevelWarning, "warning message", map[string]any{"category": "warning category"})
	l.Log(log.LevelDebug, "trace message", map[string]any{"category": "trace category"})
	l.Log(log.LevelError, "error message", map[string]any{"category": "error category"})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.DebugLevel, zapcore.ErrorLevel}
	wantCats := []string{"info category", "warning category", "trace category", "error category"}
	for i, e := range entries {
		assert.Equal(t, wantLevels[i], e.Level)
		assert.Equal(t, wantCats[i], e.ContextMap()["category"])
	}
	assert.Equal(t, "info message", entries[0].Message)
}

func TestZapLogger_ErrorMessage(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	l.Log(log.LevelError, errors.New("test"), map[string]any{"category": "error category"})

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "test", e.Message)
	assert.Equal(t, "test", e.ContextMap()["error"])
}

func TestZapLogger_StringerAndOtherMessages(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	l.Log(log.LevelInfo, version{}, nil)
	l.Log(log.LevelInfo, 42, nil)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "v3", logs.All()[0].Message)
	assert.Equal(t, "42", logs.All()[1].Message)
}

func TestZapLogger_Interpolation(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	l.Log(log.LevelInfo, "alias {alias} resolved to {path}", map[string]any{
		"alias": "@app",
		"path":  "/srv/app",
	})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "alias @app resolved to /srv/app", logs.All()[0].Message)
}

func TestZapLogger_ExtraPSRLevelsKeepSeverity(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	l.Log(log.LevelCritical, "disk full", nil)
	l.Log(log.LevelNotice, "rotated", nil)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	assert.Equal(t, "critical", logs.All()[0].ContextMap()["severity"])
	assert.Equal(t, zapcore.InfoLevel, logs.All()[1].Level)
	assert.Equal(t, "notice", logs.All()[1].ContextMap()["severity"])
}

func TestZapLogger_BelowThresholdIsDropped(t *testing.T) {
	l, logs := observed(zapcore.WarnLevel)

	l.Log(log.LevelDebug, "noise", nil)
	l.Log(log.LevelInfo, "noise", nil)
	l.Log(log.LevelWarning, "kept", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestNew(t *testing.T) {
	z, err := log.New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, z.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, z.Core().Enabled(zapcore.WarnLevel))

	z, err = log.New(config.LogConfig{Format: "console"})
	require.NoError(t, err)
	assert.True(t, z.Core().Enabled(zapcore.DebugLevel))

	_, err = log.New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	h := log.Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "GET /pot 418", e.Message)
	assert.Equal(t, "http", e.ContextMap()["category"])
	assert.Equal(t, zapcore.InfoLevel, e.Level)
}

func TestMiddleware_ServerErrorIsError(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	h := log.Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}
