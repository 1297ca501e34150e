// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns a logger writing human readable lines to w at the given level.
// Unknown levels fall back to warn. Colours are only used on terminals.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	noColor := true
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		noColor = false
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: noColor}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// NewFile returns a logger appending JSON lines to path, along with a
// function that closes the file.
func NewFile(level, path string) (zerolog.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), f.Close, nil
}
