package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once     sync.Once
	instance *log.Logger
)

// Default returns the process-wide logger, writing to stderr.
func Default() *log.Logger {
	once.Do(func() {
		instance = New(os.Stderr, "info")
	})
	return instance
}

// New builds a logger writing to w at the named level.
// Unknown level names fall back to info.
func New(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "mech3-scene",
	})
	l.SetLevel(ParseLevel(level))
	return l
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// SetLevel changes the level of the default logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}

// ParseLevel maps a config/CLI level name to a log level.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Or returns l, or the default logger when l is nil.
func Or(l *log.Logger) *log.Logger {
	if l == nil {
		return Default()
	}
	return l
}
