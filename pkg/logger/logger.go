package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Defaults to a no-op logger so library code is usable before Init.
var log = zap.NewNop().Sugar()

// Init configures the process-wide logger. In production mode it emits JSON,
// otherwise the human-readable development encoder is used.
func Init(environment, level string) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	log = l.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = log.Sync()
}

func Debug(msg string, keysAndValues ...interface{}) {
	log.Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	log.Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	log.Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	log.Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	log.Fatalw(msg, keysAndValues...)
}
