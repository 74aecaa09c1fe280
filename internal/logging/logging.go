// Package logging builds the structured loggers used by the commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a logger.
type Options struct {
	Level  string // debug, info, warn, error
	File   string // rolling log file, empty for the console
	Prefix string
	Quiet  bool // discard console output (a TUI owns the terminal)
}

// New creates a logger. The returned closer releases the log file and must
// be called on shutdown; it is a no-op for console loggers.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	switch {
	case opts.File != "":
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		w, closer = lj, lj
	case opts.Quiet:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          opts.Prefix,
		Level:           level,
	})
	if opts.File != "" {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger, closer, nil
}

// ParseLevel maps a flag value to a log level. Empty means info.
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("logging: invalid level %q: %w", s, err)
	}
	return level, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
