// Package logging provides the process logger and request-scoped logging helpers.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/function-app-demo/internal/platform/timeutil"
)

// levelEnv selects the minimum level; unset means info.
const levelEnv = "LOG_LEVEL"

// severities maps zap levels to Cloud Logging severity names.
var severities = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "ALERT",
	zapcore.FatalLevel:  "EMERGENCY",
}

var (
	processOnce   sync.Once
	processLogger *zap.Logger
	processErr    error
)

// Logger returns the process logger, writing JSON to stdout. It is built on
// first use at the level named by $LOG_LEVEL.
func Logger() *zap.Logger {
	processOnce.Do(func() {
		level, err := parseLevel(os.Getenv(levelEnv))
		processErr = err
		processLogger = newLogger(zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	})
	return processLogger
}

// Err reports a rejected $LOG_LEVEL. The logger falls back to info in that case.
func Err() error {
	Logger()
	return processErr
}

// Sync flushes buffered log entries. Call during shutdown.
func Sync() error {
	return Logger().Sync()
}

func newLogger(ws zapcore.WriteSyncer, level zapcore.LevelEnabler) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, level)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(ws))
}

// encoderConfig names fields the way Cloud Logging's structured payload expects.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.LevelKey = "severity"
	cfg.MessageKey = "message"
	cfg.CallerKey = "caller"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(timeutil.RFC3339Micros))
	}
	cfg.EncodeLevel = encodeSeverity
	return cfg
}

func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	severity, ok := severities[level]
	if !ok {
		severity = "DEFAULT"
	}
	enc.AppendString(severity)
}

func parseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid %s %q: %w", levelEnv, s, err)
	}
	return level, nil
}
