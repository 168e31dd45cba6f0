// Package logger builds the structured logger of the vdba command.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a sugared zap logger taking key-value pairs.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// ParseLevel returns the zap level of debug, info, warn or error.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", level)
}

// New creates a logger. format is "json" or "text"; output is "stderr",
// "stdout" or a file path, appended to.
func New(level, format, output string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	if strings.ToLower(format) == "json" {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(ec)
	}

	var ws zapcore.WriteSyncer
	switch strings.ToLower(output) {
	case "stderr", "":
		ws = zapcore.Lock(os.Stderr)
	case "stdout":
		ws = zapcore.Lock(os.Stdout)
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", output, err)
		}
		ws = zapcore.AddSync(f)
	}

	return wrap(zap.New(zapcore.NewCore(encoder, ws, lvl))), nil
}

// Wrap adapts an existing zap logger.
func Wrap(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return wrap(base)
}

func wrap(base *zap.Logger) *Logger {
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger { return wrap(zap.NewNop()) }

// Zap returns the structured logger carrying the same context, for
// injection into vdba.Config.
func (l *Logger) Zap() *zap.Logger { return l.base }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.base.Sync() }

// With returns a logger with additional context.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return wrap(l.SugaredLogger.With(keysAndValues...).Desugar())
}

// Named adds a segment to the logger name.
func (l *Logger) Named(name string) *Logger {
	return wrap(l.base.Named(name))
}

func (l *Logger) Info(msg string, keysAndValues ...any)  { l.SugaredLogger.Infow(msg, keysAndValues...) }
func (l *Logger) Debug(msg string, keysAndValues ...any) { l.SugaredLogger.Debugw(msg, keysAndValues...) }
func (l *Logger) Warn(msg string, keysAndValues ...any)  { l.SugaredLogger.Warnw(msg, keysAndValues...) }
func (l *Logger) Error(msg string, keysAndValues ...any) { l.SugaredLogger.Errorw(msg, keysAndValues...) }
