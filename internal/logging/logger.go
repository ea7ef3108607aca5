// Package logging provides the shared console logger. Output goes to stderr
// so command output on stdout stays clean.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	logger  *log.Logger
	verbose bool
)

// Logger returns the process-wide logger, creating it on first use.
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newLogger(os.Stderr)
	}
	return logger
}

// SetVerbose raises the level to debug regardless of TODO_DEBUG.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	l := logger
	mu.Unlock()
	if l != nil {
		l.SetLevel(level())
	}
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// ParseLevel maps a level name to a log level. Unknown names yield warn.
func ParseLevel(name string) log.Level {
	switch name {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

func level() log.Level {
	if verbose || DebugEnabled() {
		return log.DebugLevel
	}
	return log.WarnLevel
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level(),
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		Prefix:          "todo",
	})
}
