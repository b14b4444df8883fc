package logger

import (
	"io"
	"os"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/sirupsen/logrus"
)

// LogrusLogger implements the Logger interface on a logrus JSON logger
type LogrusLogger struct {
	logger *logrus.Logger
	level  core.LogLevel
}

// NewLogrusLogger creates a logger that writes JSON lines with ISO 8601 timestamps to stdout
func NewLogrusLogger() core.Logger {
	return NewLogrusLoggerWithOutput(os.Stdout)
}

// NewLogrusLoggerWithOutput creates a logrus logger writing to out
func NewLogrusLoggerWithOutput(out io.Writer) core.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)

	return &LogrusLogger{
		logger: l,
		level:  core.LogLevelInfo,
	}
}

// SetLevel sets the minimum log level
func (l *LogrusLogger) SetLevel(level core.LogLevel) {
	l.level = level
	switch level {
	case core.LogLevelDebug:
		l.logger.SetLevel(logrus.DebugLevel)
	case core.LogLevelWarn:
		l.logger.SetLevel(logrus.WarnLevel)
	case core.LogLevelError:
		l.logger.SetLevel(logrus.ErrorLevel)
	default:
		l.logger.SetLevel(logrus.InfoLevel)
	}
}

// GetLevel gets the current log level
func (l *LogrusLogger) GetLevel() core.LogLevel {
	return l.level
}

// Debug logs debug messages
func (l *LogrusLogger) Debug(message string, fields map[string]any) {
	l.logger.WithFields(fields).Debug(message)
}

// Info logs informational messages
func (l *LogrusLogger) Info(message string, fields map[string]any) {
	l.logger.WithFields(fields).Info(message)
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(message string, fields map[string]any) {
	l.logger.WithFields(fields).Warn(message)
}

// Error logs error messages
func (l *LogrusLogger) Error(message string, fields map[string]any) {
	l.logger.WithFields(fields).Error(message)
}

// Flush is a no-op; logrus writes synchronously
func (l *LogrusLogger) Flush() error {
	return nil
}
