// Package observability provides logging for the Konnect portal gateway.
// A single small Logger interface keeps components testable; the standard
// implementation writes structured-ish lines through the stdlib logger.
package observability

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"
)

// LogLevel defines log message severity
type LogLevel string

// Log levels
const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
	LogLevelFatal LogLevel = "FATAL"
)

// Logger is the logging interface used throughout the gateway
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})

	WithPrefix(prefix string) Logger
}

// StandardLogger is a logger implementation that uses the standard log package
type StandardLogger struct {
	prefix string
	level  LogLevel
}

// NewLogger creates a new StandardLogger with the given prefix
func NewLogger(prefix string) Logger {
	return &StandardLogger{
		prefix: prefix,
		level:  LogLevelInfo,
	}
}

// WithLevel returns a new logger with the specified log level
func (l *StandardLogger) WithLevel(level LogLevel) *StandardLogger {
	return &StandardLogger{
		prefix: l.prefix,
		level:  level,
	}
}

// WithPrefix returns a new logger with the given prefix
func (l *StandardLogger) WithPrefix(prefix string) Logger {
	return &StandardLogger{
		prefix: prefix,
		level:  l.level,
	}
}

// Debug logs a debug message
func (l *StandardLogger) Debug(msg string, fields map[string]interface{}) {
	if l.levelEnabled(LogLevelDebug) {
		l.log(LogLevelDebug, msg, fields)
	}
}

// Info logs an info message
func (l *StandardLogger) Info(msg string, fields map[string]interface{}) {
	if l.levelEnabled(LogLevelInfo) {
		l.log(LogLevelInfo, msg, fields)
	}
}

// Warn logs a warning message
func (l *StandardLogger) Warn(msg string, fields map[string]interface{}) {
	if l.levelEnabled(LogLevelWarn) {
		l.log(LogLevelWarn, msg, fields)
	}
}

// Error logs an error message
func (l *StandardLogger) Error(msg string, fields map[string]interface{}) {
	l.log(LogLevelError, msg, fields)
}

// Fatal logs a fatal message and exits
func (l *StandardLogger) Fatal(msg string, fields map[string]interface{}) {
	l.log(LogLevelFatal, msg, fields)
}

func (l *StandardLogger) levelEnabled(level LogLevel) bool {
	levelHierarchy := map[LogLevel]int{
		LogLevelDebug: 0,
		LogLevelInfo:  1,
		LogLevelWarn:  2,
		LogLevelError: 3,
		LogLevelFatal: 4,
	}
	return levelHierarchy[level] >= levelHierarchy[l.level]
}

func (l *StandardLogger) log(level LogLevel, msg string, fields map[string]interface{}) {
	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	logPrefix := fmt.Sprintf("%s [%s] [%s]", timestamp, level, l.prefix)
	log.Printf("%s %s%s", logPrefix, msg, formatFields(fields))

	if level == LogLevelFatal {
		os.Exit(1)
	}
}

// formatFields formats fields as key=value pairs in a stable order
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := ""
	for _, k := range keys {
		result += fmt.Sprintf(" %s=%v", k, fields[k])
	}
	return result
}

// NoopLogger is a logger that discards everything; used in tests
type NoopLogger struct{}

func (l *NoopLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *NoopLogger) Info(msg string, fields map[string]interface{})  {}
func (l *NoopLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *NoopLogger) Error(msg string, fields map[string]interface{}) {}
func (l *NoopLogger) Fatal(msg string, fields map[string]interface{}) {}
func (l *NoopLogger) WithPrefix(prefix string) Logger                 { return l }
