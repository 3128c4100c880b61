// Package logging configures the zerolog logger shared through contexts.
//
// The interactive UI owns the terminal, so it logs to a file in the user
// cache directory. Headless commands log to stderr through a console writer.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidLevel indicates a log level name zerolog does not know.
var ErrInvalidLevel = errors.Base("invalid log level")

// userCacheDir returns the user cache directory.
// Declared as a variable to allow mocking in tests.
var userCacheDir = os.UserCacheDir

// ParseLevel parses a level name. The empty string means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	return lvl, nil
}

// New returns a JSON logger writing to w.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// NewConsole returns a human readable logger writing to w.
func NewConsole(w io.Writer, level string, noColor bool) (zerolog.Logger, error) {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: noColor}, level)
}

// LogPath returns the log file used by the interactive UI.
func LogPath() (string, error) {
	dir, err := userCacheDir()
	if err != nil {
		return "", errors.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "lasr", "log.txt"), nil
}

// OpenFile opens the interactive log file for appending, creating its
// directory if needed. The caller closes the returned file.
func OpenFile() (*os.File, error) {
	path, err := LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
