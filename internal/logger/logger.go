// Package logger provides process-wide logging for docsync.
// Messages go through a zerolog logger; the printf-style helpers keep call
// sites short, and With returns a structured child logger for components
// that want fields.
//
// By default only warnings and errors are written to stderr. Verbose mode
// (--verbose) lowers the level to debug. A log file with rotation can be
// configured with Configure.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newLogger(os.Stderr, zerolog.WarnLevel)
)

// Options configures the logger.
type Options struct {
	// Verbose enables debug output.
	Verbose bool

	// JSON writes raw JSON lines instead of the console format.
	JSON bool

	// File, when set, additionally writes logs to a rotated file.
	File string

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int
}

// Configure replaces the global logger according to opts.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	verbose = opts.Verbose
	var w io.Writer = output
	if !opts.JSON {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		w = zerolog.MultiLevelWriter(w, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		})
	}
	base = newLogger(w, levelFor(verbose))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = base.Level(levelFor(v))
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs as raw JSON lines.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newLogger(w, levelFor(verbose))
}

// With returns a child logger carrying a string field.
func With(key, value string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str(key, value).Logger()
}

// L returns the current base logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	l := L()
	l.Debug().Msgf(format, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	l := L()
	l.Info().Msgf(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	l := L()
	l.Warn().Msgf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	l := L()
	l.Error().Msgf(format, args...)
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func levelFor(v bool) zerolog.Level {
	if v {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}
