package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Options controls the process-wide logger
type Options struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

var (
	mu   sync.RWMutex
	root = newLogger(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
)

func newLogger(opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	level := hclog.LevelFromString(strings.TrimSpace(opts.Level))
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "amalgam",
		Level:      level,
		Output:     output,
		JSONFormat: strings.EqualFold(opts.Format, "json"),
	})
}

// Configure replaces the root logger. Sub-loggers handed out earlier keep
// their old settings.
func Configure(opts Options) {
	l := newLogger(opts)

	mu.Lock()
	root = l
	mu.Unlock()
}

// L returns the root logger
func L() hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Named returns a sub-logger for a component
func Named(name string) hclog.Logger {
	return L().Named(name)
}

// Info logs informational messages with key/value pairs
func Info(msg string, args ...interface{}) {
	L().Info(msg, args...)
}

// Warn logs warning messages
func Warn(msg string, args ...interface{}) {
	L().Warn(msg, args...)
}

// Error logs error messages
func Error(msg string, args ...interface{}) {
	L().Error(msg, args...)
}

// Debug logs debug messages
func Debug(msg string, args ...interface{}) {
	L().Debug(msg, args...)
}
