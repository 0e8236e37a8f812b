// Package logger provides the logging interface used across iback.
// Backends write to the console, to a log file, or nowhere.
package logger

import (
	"fmt"
	"log"
	"sync"
)

// Logger defines the interface for leveled logging across iback components.
type Logger interface {
	// Info logs an informational message (e.g., "Internet is back").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "Slow Internet, retrying").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "Probe failed: i/o timeout").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger (e.g., an open log file).
	// Safe to call multiple times.
	Close() error
}

// Level is the severity of a log message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// StandardLogger wraps the stdlib *log.Logger. Every line is prefixed with
// its level in brackets, e.g. "[WARNING] ".
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

func (s *StandardLogger) logf(lvl Level, format string, args ...interface{}) {
	s.logger.Printf("["+lvl.String()+"] "+format, args...)
}

func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logf(LevelInfo, format, args...)
}

func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logf(LevelWarning, format, args...)
}

func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logf(LevelError, format, args...)
}

// Close is a no-op for StandardLogger.
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger discards all messages. It is the default for components
// constructed without a logger.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// Entry is one message recorded by MockLogger.
type Entry struct {
	Level   Level
	Message string
}

// MockLogger records log calls for verification in tests. It is safe for
// concurrent use, so it can be handed to the scheduler loop while a test
// inspects it.
type MockLogger struct {
	mu      sync.Mutex
	entries []Entry
	closed  bool
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(lvl Level, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Level: lvl, Message: fmt.Sprintf(format, args...)})
}

// Info records the formatted message at LevelInfo.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(LevelInfo, format, args...)
}

// Warning records the formatted message at LevelWarning.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record(LevelWarning, format, args...)
}

// Error records the formatted message at LevelError.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(LevelError, format, args...)
}

// Close marks the logger closed.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Entries returns a copy of everything recorded so far, in order.
func (m *MockLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Messages returns the recorded messages of one level, in order.
func (m *MockLogger) Messages(lvl Level) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.Level == lvl {
			out = append(out, e.Message)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (m *MockLogger) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Logger = (*MockLogger)(nil)
