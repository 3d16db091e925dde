// Package testlogger records log output in memory so tests can assert on it
package testlogger

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/LerianStudio/lib-commons/commons/log"
)

// LogEntry represents a single log entry
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]any
}

type sink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// TestLogger implements log.Logger. Loggers derived through WithField and
// WithFields share the entries of their parent.
type TestLogger struct {
	sink   *sink
	fields map[string]any
}

// New creates a new TestLogger
func New() *TestLogger {
	return &TestLogger{sink: &sink{}}
}

func (l *TestLogger) log(level, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	l.sink.entries = append(l.sink.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  maps.Clone(l.fields),
	})
}

func (l *TestLogger) Debug(args ...any)                 { l.log("DEBUG", fmt.Sprint(args...)) }
func (l *TestLogger) Debugf(format string, args ...any) { l.log("DEBUG", format, args...) }
func (l *TestLogger) Debugln(args ...any)               { l.log("DEBUG", fmt.Sprintln(args...)) }
func (l *TestLogger) Info(args ...any)                  { l.log("INFO", fmt.Sprint(args...)) }
func (l *TestLogger) Infof(format string, args ...any)  { l.log("INFO", format, args...) }
func (l *TestLogger) Infoln(args ...any)                { l.log("INFO", fmt.Sprintln(args...)) }
func (l *TestLogger) Warn(args ...any)                  { l.log("WARN", fmt.Sprint(args...)) }
func (l *TestLogger) Warnf(format string, args ...any)  { l.log("WARN", format, args...) }
func (l *TestLogger) Warnln(args ...any)                { l.log("WARN", fmt.Sprintln(args...)) }
func (l *TestLogger) Error(args ...any)                 { l.log("ERROR", fmt.Sprint(args...)) }
func (l *TestLogger) Errorf(format string, args ...any) { l.log("ERROR", format, args...) }
func (l *TestLogger) Errorln(args ...any)               { l.log("ERROR", fmt.Sprintln(args...)) }
func (l *TestLogger) Fatal(args ...any)                 { l.log("FATAL", fmt.Sprint(args...)) }
func (l *TestLogger) Fatalf(format string, args ...any) { l.log("FATAL", format, args...) }
func (l *TestLogger) Fatalln(args ...any)               { l.log("FATAL", fmt.Sprintln(args...)) }

// WithField returns a logger that attaches key to every entry
func (l *TestLogger) WithField(key string, value any) log.Logger {
	return l.WithFields(key, value)
}

// WithFields returns a logger that attaches the key/value pairs to every entry.
// A trailing key without a value is dropped.
func (l *TestLogger) WithFields(fields ...any) log.Logger {
	child := &TestLogger{sink: l.sink, fields: maps.Clone(l.fields)}
	if child.fields == nil {
		child.fields = make(map[string]any, len(fields)/2)
	}

	for i := 0; i+1 < len(fields); i += 2 {
		child.fields[fmt.Sprint(fields[i])] = fields[i+1]
	}

	return child
}

func (l *TestLogger) Sync() error { return nil }

func (l *TestLogger) WithDefaultMessageTemplate(string) log.Logger { return l }

// GetEntries returns all log entries
func (l *TestLogger) GetEntries() []LogEntry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	entries := make([]LogEntry, len(l.sink.entries))
	copy(entries, l.sink.entries)

	return entries
}

// Clear clears all log entries
func (l *TestLogger) Clear() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	l.sink.entries = nil
}

// Count returns the number of log entries for the given level
func (l *TestLogger) Count(level string) int {
	count := 0

	for _, entry := range l.GetEntries() {
		if entry.Level == level {
			count++
		}
	}

	return count
}

// Contains reports whether an entry of the given level contains every substring
func (l *TestLogger) Contains(level string, substrings ...string) bool {
	for _, entry := range l.GetEntries() {
		if entry.Level != level {
			continue
		}

		if containsAll(entry.Message, substrings) {
			return true
		}
	}

	return false
}

func containsAll(s string, substrings []string) bool {
	for _, sub := range substrings {
		if !strings.Contains(s, sub) {
			return false
		}
	}

	return true
}
