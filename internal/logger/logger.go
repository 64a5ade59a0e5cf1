package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// VerboseChecker interface for checking verbose state
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger provides structured logging with verbose support.
// Debug output requires verbose; Info, Warn and Error are always written.
type Logger struct {
	component      string
	verboseChecker VerboseChecker
	zl             zerolog.Logger
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// New creates a new logger instance writing human-readable lines to stderr
func New(component string, verboseChecker VerboseChecker) *Logger {
	return NewWithWriter(component, verboseChecker, zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05.000",
	})
}

// NewWithCallback creates a new logger instance with a callback function
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return New(component, VerboseFunc(verboseCheck))
}

// NewWithWriter creates a logger that writes JSON lines to w
func NewWithWriter(component string, verboseChecker VerboseChecker, w io.Writer) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		zl:             zerolog.New(w).With().Timestamp().Logger(),
	}
}

// NewTee creates a logger that writes JSON lines to w and mirrors
// each entry to console in human-readable form
func NewTee(component string, verboseChecker VerboseChecker, w, console io.Writer) *Logger {
	return NewWithWriter(component, verboseChecker, zerolog.MultiLevelWriter(w, zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: "15:04:05.000",
	}))
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// OpenFile opens (creating if needed) an append-only log file
func OpenFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	// #nosec G304 - path comes from configuration
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// WithComponent creates a logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: l.verboseChecker,
		zl:             l.zl,
	}
}

// VerboseFunc adapts a function to VerboseChecker
type VerboseFunc func() bool

func (f VerboseFunc) IsVerbose() bool {
	if f == nil {
		return false
	}
	return f()
}

func (l *Logger) verbose() bool {
	return l.verboseChecker != nil && l.verboseChecker.IsVerbose()
}

// Debug logs debug messages (only when verbose=true)
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.verbose() {
		l.log(zerolog.DebugLevel, msg, nil, args...)
	}
}

// Info logs informational messages
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(zerolog.InfoLevel, msg, nil, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(zerolog.WarnLevel, msg, nil, args...)
}

// Error logs error messages
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(zerolog.ErrorLevel, msg, nil, args...)
}

// DebugWithFields logs debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields []Field, args ...interface{}) {
	if l.verbose() {
		l.log(zerolog.DebugLevel, msg, fields, args...)
	}
}

// InfoWithFields logs info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields []Field, args ...interface{}) {
	l.log(zerolog.InfoLevel, msg, fields, args...)
}

// WarnWithFields logs warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields []Field, args ...interface{}) {
	l.log(zerolog.WarnLevel, msg, fields, args...)
}

// ErrorWithFields logs error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields []Field, args ...interface{}) {
	l.log(zerolog.ErrorLevel, msg, fields, args...)
}

func (l *Logger) log(level zerolog.Level, msg string, fields []Field, args ...interface{}) {
	component := l.component
	if component == "" {
		component = "main"
	}

	ev := l.zl.WithLevel(level)
	if ev == nil {
		return
	}
	ev = ev.Str("component", component)

	for _, field := range fields {
		switch v := field.Value.(type) {
		case string:
			ev = ev.Str(field.Key, v)
		case int:
			ev = ev.Int(field.Key, v)
		case int64:
			ev = ev.Int64(field.Key, v)
		case bool:
			ev = ev.Bool(field.Key, v)
		case time.Duration:
			ev = ev.Dur(field.Key, v)
		case error:
			ev = ev.Str(field.Key, v.Error())
		case fmt.Stringer:
			ev = ev.Str(field.Key, v.String())
		default:
			ev = ev.Interface(field.Key, v)
		}
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	ev.Msg(msg)
}

// Helper functions for common field types
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Count(value int) Field {
	return Field{Key: "count", Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}
