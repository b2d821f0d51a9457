package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init initializes the process logger with the given level and encoding
// ("console" or "json"). Log output always goes to stderr so that command
// output on stdout stays machine readable.
func Init(level, encoding string) error {
	zapLevel, err := parseLevel(level)
	if err != nil {
		return err
	}
	if encoding == "" {
		encoding = "console"
	}
	if encoding != "console" && encoding != "json" {
		return fmt.Errorf("unknown log encoding: %s", encoding)
	}

	encodeLevel := zapcore.CapitalColorLevelEncoder
	if encoding == "json" {
		encodeLevel = zapcore.LowercaseLevelEncoder
	}

	config := zap.Config{
		Level:    zap.NewAtomicLevelAt(zapLevel),
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log = built
	return nil
}

// parseLevel converts a string log level to a zapcore.Level
func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// L returns the process logger. It is a no-op logger until Init succeeds.
func L() *zap.Logger {
	return log
}

// Named returns a child logger for a subsystem
func Named(name string) *zap.Logger {
	return log.Named(name)
}

// Debug logs a message at debug level
func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

// Warn logs a message at warn level
func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

// Error logs a message at error level
func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

// Or returns l, or the process logger when l is nil
func Or(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() error {
	return log.Sync()
}
