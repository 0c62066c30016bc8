package webstore

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// Logger defines an interface for logging operations.
// Implementations should be safe for concurrent use.
type Logger interface {
	// Info logs informational messages
	Info(ctx context.Context, format string, args ...interface{})

	// Warn logs warning messages
	Warn(ctx context.Context, format string, args ...interface{})

	// Error logs error messages
	Error(ctx context.Context, format string, args ...interface{})

	// Debug logs debug messages
	Debug(ctx context.Context, format string, args ...interface{})
}

// NoopLogger is a Logger that does nothing.
type NoopLogger struct{}

func (NoopLogger) Info(ctx context.Context, format string, args ...interface{})  {}
func (NoopLogger) Warn(ctx context.Context, format string, args ...interface{})  {}
func (NoopLogger) Error(ctx context.Context, format string, args ...interface{}) {}
func (NoopLogger) Debug(ctx context.Context, format string, args ...interface{}) {}

// zerologLogger adapts a zerolog.Logger. A logger attached to ctx with
// zerolog's WithContext takes precedence.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a Logger writing through zl.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return zerologLogger{zl: zl}
}

func (l zerologLogger) from(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if zl := zerolog.Ctx(ctx); zl != zerolog.DefaultContextLogger && zl.GetLevel() != zerolog.Disabled {
			return zl
		}
	}
	return &l.zl
}

func (l zerologLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.from(ctx).Info().Msgf(format, args...)
}

func (l zerologLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.from(ctx).Warn().Msgf(format, args...)
}

func (l zerologLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.from(ctx).Error().Msgf(format, args...)
}

func (l zerologLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.from(ctx).Debug().Msgf(format, args...)
}

var defaultLogger Logger = NewZerologLogger(
	zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Str("component", "webstore").Logger(),
)
