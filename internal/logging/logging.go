// Package logging builds the zap logger used by the command line and adapts
// it to the core Logger contract.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"amity/internal/core"
)

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New creates a logger.
// level: "debug", "info", "warn", "error" (default "info")
// format: "json" or "console" (default "console")
// service: attached as the service_name field when set
//
// Output goes to stderr so it never mixes with shell output on stdout.
func New(level, format, service string) (*zap.Logger, error) {
	var config zap.Config
	if format == "json" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	if service != "" {
		logger = logger.With(zap.String("service_name", service))
	}
	return logger, nil
}

// Adapt exposes a zap logger through the core.Logger interface. Key/value
// pairs are passed as structured fields.
func Adapt(logger *zap.Logger) core.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return sugared{s: logger.Sugar()}
}

type sugared struct {
	s *zap.SugaredLogger
}

func (l sugared) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l sugared) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l sugared) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l sugared) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
