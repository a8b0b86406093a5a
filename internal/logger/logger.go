// Package logger provides a simple logging interface for hypertop components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
//
// The production implementation is backed by zerolog. While the dashboard is
// running it writes to a log file, because the terminal belongs to the UI.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DebugEnv forces debug-level logging when set to any non-empty value.
const DebugEnv = "HYPERTOP_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// zerologLogger adapts a zerolog.Logger to Logger.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerolog wraps an existing zerolog logger.
func NewZerolog(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *zerologLogger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *zerologLogger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *zerologLogger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// ParseLevel maps a config level name to a zerolog level. HYPERTOP_DEBUG
// overrides whatever was configured.
func ParseLevel(name string) (zerolog.Level, error) {
	if os.Getenv(DebugEnv) != "" {
		return zerolog.DebugLevel, nil
	}
	if strings.TrimSpace(name) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

// New returns a logger writing JSON lines to w at the given level.
// The component name is attached to every line.
func New(w io.Writer, level zerolog.Level, component string) Logger {
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if component != "" {
		zl = zl.With().Str("component", component).Logger()
	}
	return NewZerolog(zl)
}

// NewConsole returns a human-readable logger on stderr. Debug lines are only
// printed when HYPERTOP_DEBUG is set.
func NewConsole(component string) Logger {
	level := zerolog.InfoLevel
	if os.Getenv(DebugEnv) != "" {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return New(w, level, component)
}

// NewFile opens (appending) the log file at path, creating its directory, and
// returns a logger writing to it. The returned closer closes the file.
func NewFile(path, level string) (Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, lvl, ""), f, nil
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "debug", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "info", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "warn", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "error", Message: fmt.Sprintf(format, args...)})
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewConsole("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
