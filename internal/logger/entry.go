package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry accumulates metric fields (durations, shapes, sizes) for one log line.
// Trace fields still come from the context passed at the logging call.
type Entry struct {
	fields Fields
}

// With starts an Entry with the given metric fields.
// Example: logger.With(logger.Fields{"key": key}).Since(start).Info(ctx, "space published")
func With(fields Fields) *Entry {
	return (&Entry{}).With(fields)
}

// With returns a copy of the Entry extended with fields.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{fields: merged}
}

// Since records the milliseconds elapsed from start.
func (e *Entry) Since(start time.Time) *Entry {
	return e.With(Fields{FieldDurationMs: time.Since(start).Milliseconds()})
}

// WithShape records a table's row and column counts.
func (e *Entry) WithShape(rows, columns int) *Entry {
	return e.With(Fields{FieldRows: rows, FieldColumns: columns})
}

// WithCount records how many items were processed.
func (e *Entry) WithCount(count int) *Entry {
	return e.With(Fields{FieldCount: count})
}

// WithSize records a byte size.
func (e *Entry) WithSize(size int) *Entry {
	return e.With(Fields{FieldSize: size})
}

func (e *Entry) log(ctx context.Context, level logrus.Level, format string, args ...interface{}) {
	l := GetDefault()
	if ctx != nil {
		l = FromContext(ctx)
	}
	l.Entry.WithFields(logrus.Fields(e.fields)).Logf(level, format, args...)
}

// Debug logs at debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.DebugLevel, format, args...)
}

// Info logs at info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.InfoLevel, format, args...)
}

// Warn logs at warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.WarnLevel, format, args...)
}

// Error logs at error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.ErrorLevel, format, args...)
}
