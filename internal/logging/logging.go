// Package logging builds the zerolog logger shared by the CLI and the
// packages it drives.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLevel is used when no level is configured or the level is unknown.
const DefaultLevel = zerolog.WarnLevel

// Options configures New.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error", ...).
	Level string
	// File, when set, receives JSON log lines through a rotating writer in
	// addition to the console output.
	File string
	// NoColor disables ANSI colors on the console writer.
	NoColor bool
}

// ParseLevel converts a level name into a zerolog.Level, falling back to
// DefaultLevel for empty or unknown names.
func ParseLevel(name string) zerolog.Level {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return DefaultLevel
	}
	if name == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return DefaultLevel
	}
	return lvl
}

// New returns a logger writing human-readable lines to console. A nil
// console means os.Stderr.
func New(opts Options, console io.Writer) zerolog.Logger {
	if console == nil {
		console = os.Stderr
	}
	cw := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}

	var w io.Writer = cw
	if opts.File != "" {
		w = zerolog.MultiLevelWriter(cw, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}

	return zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}
