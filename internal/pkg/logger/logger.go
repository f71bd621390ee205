package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// global logs JSON at info until Init replaces it.
var global = zap.Must(zap.NewProduction(zap.AddCallerSkip(1)))

// Init builds the process logger. Production JSON config, ISO8601 timestamps.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}

	global = l
	zap.ReplaceGlobals(l)
	return nil
}

// Set replaces the process logger, mostly for tests.
func Set(l *zap.Logger) {
	global = l
}

func Sync() {
	_ = global.Sync()
}

// With returns a context whose logger carries the given fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, ctxKey{}, FromContext(ctx).With(fields...))
}

func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return global
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Sugar().Debugf(format, args...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Info(msg, fields...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Sugar().Infof(format, args...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Sugar().Warnf(format, args...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Error(msg, fields...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Sugar().Errorf(format, args...)
}

func Fatal(ctx context.Context, err error) {
	if err == nil {
		return
	}
	FromContext(ctx).Error(err.Error())
	Sync()
	os.Exit(1)
}
