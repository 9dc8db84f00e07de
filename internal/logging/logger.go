package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger that writes JSON to logPath and human-readable
// lines to stderr. Every entry carries the session name and PID.
func New(logPath, sessionName string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return zap.New(newCore(zapcore.AddSync(file), zapcore.AddSync(os.Stderr)),
		zap.Fields(
			zap.String("session", sessionName),
			zap.Int("pid", os.Getpid()),
		),
	), nil
}

// NewConsole creates a stderr-only logger for short-lived CLI commands.
func NewConsole(level zapcore.Level) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
}

func newCore(file, console zapcore.WriteSyncer) zapcore.Core {
	cfg := encoderConfig()
	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), file, zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), console, zapcore.InfoLevel),
	)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
