// Package logging builds the loggers the rest of the module hands around.
package logging

import (
	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLoggerConfig returns the default logger config: console encoding,
// colored levels, no stacktraces.
func NewLoggerConfig() zap.Config {
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// NewLogger returns a named logger that outputs Info and above to stdout.
func NewLogger(name string) golog.Logger {
	logger, err := NewLoggerConfig().Build()
	if err != nil {
		return golog.Global().Named(name)
	}
	return logger.Sugar().Named(name)
}

// NewDebugLogger returns a named logger that outputs Debug and above to
// stdout.
func NewDebugLogger(name string) golog.Logger {
	config := NewLoggerConfig()
	config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	logger, err := config.Build()
	if err != nil {
		return golog.Global().Named(name)
	}
	return logger.Sugar().Named(name)
}
