package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap builds the logger handed to the gotd client. gotd is chatty at debug
// level, so it never goes below warn unless explicitly asked for.
func Zap(level string) *zap.Logger {
	lvl := zapcore.WarnLevel
	if ParseLevel(level) < 0 {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("gotd")
}
