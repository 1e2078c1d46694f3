// Package glog wraps go.uber.org/zap behind a small interface so the rest
// of the engine depends on a logging contract rather than a concrete sink.
// cmd/groovyls constructs the real sink; tests use the no-op Logger.
package glog

import (
	"go.uber.org/zap"
)

// Logger is the logging contract used throughout the engine. Fields are
// passed as alternating key/value pairs, matching zap's SugaredLogger.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	With(kv ...interface{}) Logger
	Sync() error
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a Logger backed by zap, writing structured logs to stderr so
// stdout stays reserved for the LSP protocol stream.
func New(development bool) (Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

// Nop returns a Logger that discards everything, for use in tests.
func Nop() Logger { return &zapLogger{s: zap.NewNop().Sugar()} }

func (l *zapLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l *zapLogger) Sync() error                         { return l.s.Sync() }

func (l *zapLogger) With(kv ...interface{}) Logger {
	return &zapLogger{s: l.s.With(kv...)}
}
