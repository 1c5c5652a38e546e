package gorgzorg

import "github.com/sirupsen/logrus"

// Logger interface for GorgZorg session logging
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NoopLogger does nothing
type NoopLogger struct{}

func (NoopLogger) Debug(format string, args ...interface{}) {}
func (NoopLogger) Info(format string, args ...interface{})  {}
func (NoopLogger) Error(format string, args ...interface{}) {}

// LogrusLogger adapts a logrus logger to the Logger interface.
type LogrusLogger struct {
	log *logrus.Logger
}

// NewLogrusLogger creates a Logger backed by the given logrus logger.
// A nil argument uses the logrus standard logger.
func NewLogrusLogger(log *logrus.Logger) *LogrusLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogrusLogger{log: log}
}

func (l *LogrusLogger) Debug(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l *LogrusLogger) Info(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

func (l *LogrusLogger) Error(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}
