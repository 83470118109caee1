package core

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-logr/logr"
)

// Logger interface for structured logging
// Implementations can provide custom logging behavior (e.g., integration with logr, zap, etc.)
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// DefaultLogger is a simple logger implementation using the standard log package
type DefaultLogger struct{}

// NewDefaultLogger creates a new DefaultLogger
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, fields ...Field) {
	l.log("DEBUG", msg, fields...)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, fields ...Field) {
	l.log("INFO", msg, fields...)
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, fields ...Field) {
	l.log("WARN", msg, fields...)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, fields ...Field) {
	l.log("ERROR", msg, fields...)
}

func (l *DefaultLogger) log(level, msg string, fields ...Field) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if len(fields) > 0 {
		b.WriteString(" {")
		for i, f := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", f.Key, f.Value)
		}
		b.WriteString("}")
	}
	log.Println(b.String())
}

// NoOpLogger is a logger that discards all log messages
// Useful for tests or when logging is not desired
type NoOpLogger struct{}

// NewNoOpLogger creates a new NoOpLogger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(msg string, fields ...Field) {}
func (l *NoOpLogger) Info(msg string, fields ...Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...Field) {}

// =============================================================================
// logr adapter
// =============================================================================

// LogrLogger adapts a logr.Logger. Debug maps to V(1), Warn to Info with a
// "level" key, since logr has no warning level.
type LogrLogger struct {
	l logr.Logger
}

// NewLogrLogger wraps l.
func NewLogrLogger(l logr.Logger) *LogrLogger {
	return &LogrLogger{l: l}
}

func (l *LogrLogger) Debug(msg string, fields ...Field) {
	l.l.V(1).Info(msg, keysAndValues(fields)...)
}

func (l *LogrLogger) Info(msg string, fields ...Field) {
	l.l.Info(msg, keysAndValues(fields)...)
}

func (l *LogrLogger) Warn(msg string, fields ...Field) {
	l.l.Info(msg, append([]any{"level", "warn"}, keysAndValues(fields)...)...)
}

// Error passes the first error-typed "error" field to logr as the error argument.
func (l *LogrLogger) Error(msg string, fields ...Field) {
	var err error
	rest := make([]Field, 0, len(fields))
	for _, f := range fields {
		if e, ok := f.Value.(error); ok && err == nil && f.Key == "error" {
			err = e
			continue
		}
		rest = append(rest, f)
	}
	l.l.Error(err, msg, keysAndValues(rest)...)
}

func keysAndValues(fields []Field) []any {
	if len(fields) == 0 {
		return nil
	}
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}
