// Package logger configures the zerolog logger used across the
// runtime.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Setup creates a logger writing JSON to stderr at the given level.
// Unknown levels fall back to info.
func Setup(level string) zerolog.Logger {
	var l zerolog.Level
	switch strings.ToLower(level) {
	case "trace":
		l = zerolog.TraceLevel
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	case "off":
		l = zerolog.Disabled
	default:
		l = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(l).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests and embedded use.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
