// Package ducontract holds the small set of types both the public docusync
// package and every internal component need, so internal packages never have
// to import the public package to see a Logger or a Sink.
package ducontract

import (
	"context"

	"github.com/Abraxas-365/docusync/pkg/logx"
)

// Field is a single structured logging attribute.
type Field struct {
	Key   string
	Value any
}

// F builds a Field; a small convenience used at every call site.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the host's logging contract (spec §6): three severities, no
// more. Everything in this module logs through it rather than a global.
type Logger interface {
	Info(msg string, fields ...Field)
	Warning(msg string, fields ...Field)
	Severe(msg string, fields ...Field)
}

// Sink is the host's row/checkpoint contract (spec §6). Upsert must be
// idempotent by primary key; Checkpoint persists state atomically.
type Sink interface {
	Upsert(ctx context.Context, table string, row map[string]string) error
	Checkpoint(ctx context.Context, state map[string]string) error
}

// TableSchema is one entry of the schema declaration (C7).
type TableSchema struct {
	Table      string
	PrimaryKey []string
}

// stdLogger adapts pkg/logx to Logger, for the debug binary and for tests
// that want real output instead of a mock.
type stdLogger struct {
	l *logx.Logger
}

// NewStdLogger wraps the given logx.Logger (or the package default, when nil)
// as a Logger.
func NewStdLogger(l *logx.Logger) Logger {
	if l == nil {
		l = logx.GetDefaultLogger()
	}
	return &stdLogger{l: l}
}

func (s *stdLogger) Info(msg string, fields ...Field) {
	s.l.WithFields(toFields(fields)).Info(msg)
}

func (s *stdLogger) Warning(msg string, fields ...Field) {
	s.l.WithFields(toFields(fields)).Warn(msg)
}

func (s *stdLogger) Severe(msg string, fields ...Field) {
	s.l.WithFields(toFields(fields)).WithField("severity", "severe").Error(msg)
}

func toFields(fields []Field) logx.Fields {
	out := make(logx.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
