// Package logging builds the zerolog loggers used by the CLI.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a case-insensitive level name to a zerolog level,
// falling back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New writes human-readable lines to console and, when file is non-nil, an
// uncoloured copy to file.
func New(console, file io.Writer, level string) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
	}
	if file != nil {
		out = zerolog.MultiLevelWriter(
			out,
			zerolog.ConsoleWriter{
				Out:        file,
				TimeFormat: time.RFC3339,
				NoColor:    true,
			},
		)
	}

	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}
