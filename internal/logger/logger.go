// Package logger configures the zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the application logger.
//   - level: log level string (trace, debug, info, warn, error)
//   - format: "json" for machine-readable lines, "pretty" for console output
//   - path: log file; empty writes to stderr
//
// The terminal UI owns stdout, so logs never go there. The returned closer
// releases the log file.
func Setup(level, format, path string) (zerolog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zerolog.Nop(), closer, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		out = f
		closer = f
	}

	writer := out
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    path != "",
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	log := zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
