package logging

import (
	"io"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry. Entries below a logger's configured
// level are dropped before any formatting work happens.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a level name to its Level, case-insensitively. Unknown
// names fall back to InfoLevel so a typo in LOG_LEVEL never silences the log.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is one structured key-value attribute attached to a log entry.
// Constructors in logger_fields.go cover the common keys.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging interface every component takes.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that attaches the given fields to every
	// entry it writes.
	With(fields ...Field) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// JSONLogger writes one JSON object per entry to its writer. Safe for
// concurrent use; the mutex also serializes writes so entries never
// interleave.
type JSONLogger struct {
	writer io.Writer
	level  Level
	fields []Field
	mu     sync.Mutex
}

// LogEntry is the wire shape of one JSONLogger line.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything. Tests pass it where log output is noise.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return InfoLevel }

// NewNopLogger returns a logger that discards all output.
func NewNopLogger() Logger {
	return NopLogger{}
}

// TimedOperation measures one operation from StartTimer to End or EndError.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}
