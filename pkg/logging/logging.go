// Package logging builds the zerolog logger shared by commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build configures a logger before Make.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
	format string
}

// Data holds the built logger and the file it writes to, if any.
type Data struct {
	Logger  zerolog.Logger
	LogFile *os.File
}

// New starts a build writing human-readable info logs to stderr.
func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.InfoLevel, format: "console"}
}

// FromPath appends logs to a file instead of the writer.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// FromWriter logs to w.
func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// Level is one of debug, info, warn, error (case-insensitive); anything else
// means info.
func (b *Build) Level(level string) *Build {
	b.level = ParseLevel(level)
	return b
}

// Format is "json" for machine output; anything else renders for humans.
func (b *Build) Format(format string) *Build {
	b.format = strings.ToLower(strings.TrimSpace(format))
	return b
}

// Make builds the logger.
func (b *Build) Make() (*Data, error) {
	d := &Data{}
	w := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		d.LogFile = f
		w = zerolog.SyncWriter(f)
	}
	if b.format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: b.path != ""}
	}
	d.Logger = zerolog.New(w).Level(b.level).With().Timestamp().Logger()
	return d, nil
}

// Close releases the log file.
func (d *Data) Close() error {
	if d == nil || d.LogFile == nil {
		return nil
	}
	return d.LogFile.Close()
}

// ParseLevel maps a level name to zerolog.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
