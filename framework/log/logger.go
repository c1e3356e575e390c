package log

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-yii/framework/config"
)

// Level is a PSR-3 severity name.
type Level string

const (
	LevelEmergency Level = "emergency"
	LevelAlert     Level = "alert"
	LevelCritical  Level = "critical"
	LevelError     Level = "error"
	LevelWarning   Level = "warning"
	LevelNotice    Level = "notice"
	LevelInfo      Level = "info"
	LevelDebug     Level = "debug"
)

// DefaultCategory is used when a caller gives no category.
const DefaultCategory = "application"

// Logger receives log records from the application.
type Logger interface {
	// Log records message at level. message is usually a string, but an
	// error or fmt.Stringer is accepted as well.
	Log(level Level, message any, context map[string]any)
}

// ZapLogger writes records to a zap.Logger.
type ZapLogger struct {
	z *zap.Logger
}

// NewZapLogger wraps z.
func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

// Zap returns the underlying logger.
func (l *ZapLogger) Zap() *zap.Logger { return l.z }

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error { return l.z.Sync() }

func (l *ZapLogger) Log(level Level, message any, context map[string]any) {
	zl := zapLevel(level)
	if !l.z.Core().Enabled(zl) {
		return
	}

	var msg string
	fields := make([]zap.Field, 0, len(context)+2)
	switch m := message.(type) {
	case string:
		msg = interpolate(m, context)
	case error:
		msg = m.Error()
		fields = append(fields, zap.Error(m))
	case fmt.Stringer:
		msg = m.String()
	default:
		msg = fmt.Sprint(m)
	}

	switch level {
	case LevelEmergency, LevelAlert, LevelCritical, LevelNotice:
		fields = append(fields, zap.String("severity", string(level)))
	}

	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, context[k]))
	}

	if ce := l.z.Check(zl, msg); ce != nil {
		ce.Write(fields...)
	}
}

// zapLevel folds the PSR-3 levels onto zap's. Levels zap has no room for are
// kept in a "severity" field.
func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelEmergency, LevelAlert, LevelCritical, LevelError:
		return zapcore.ErrorLevel
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelNotice, LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// interpolate replaces {key} placeholders with context values.
func interpolate(msg string, context map[string]any) string {
	if len(context) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(context)*2)
	for k, v := range context {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// New builds the zap logger described by cfg: "json" uses zap's production
// settings, anything else the development console encoder.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	z, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("log: building logger: %w", err)
	}
	return z, nil
}
