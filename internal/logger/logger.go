// Package logger builds the zerolog loggers used across mrimetrics.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger on stderr. Verbose enables debug output.
func New(verbose bool) zerolog.Logger {
	return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, verbose)
}

// NewWithWriter returns a timestamped logger writing to w
func NewWithWriter(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Component tags every event of the returned logger with the component name
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Nop discards everything; handy for tests and library defaults
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
