// Package logging adapts github.com/sirupsen/logrus to the domain Logger interface.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ochairo/proclist/internal/domain/interfaces"
)

// Logger implements interfaces.Logger on top of a logrus logger
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger writing timestamp-free text output to w at level
func NewLogger(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	l.SetLevel(level)
	return &Logger{entry: logrus.NewEntry(l)}
}

// Debug logs debug-level messages
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.with(fields).Debug(msg)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.with(fields).Info(msg)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.with(fields).Warn(msg)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.with(fields).Error(msg)
}

func (l *Logger) with(fields []interfaces.Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(logrus.Fields(interfaces.FieldMap(fields)))
}
