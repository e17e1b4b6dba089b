// Package logging builds the hclog loggers used by the darkstar command
// and library.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel selects the log level (trace, debug, info, warn, error).
	EnvLogLevel = "DARKSTAR_LOG_LEVEL"

	// EnvJSONLog switches to JSON output when set to "1".
	EnvJSONLog = "DARKSTAR_JSON_LOG"

	// Prefix starts every line of text output.
	Prefix = "🌑 "

	// DefaultLevel is used when no level is configured.
	DefaultLevel = "warn"
)

// Options describes a logger. Zero values fall back to the environment.
type Options struct {
	Name   string
	Level  string
	JSON   bool
	Output io.Writer
}

// New creates a logger from opts. An empty Level is read from
// DARKSTAR_LOG_LEVEL; JSON output is used when opts.JSON is set or
// DARKSTAR_JSON_LOG is "1".
func New(opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	level := opts.Level
	if level == "" {
		level = GetLogLevel()
	}

	jsonFormat := opts.JSON || JSONFromEnv()
	if !jsonFormat {
		output = NewPrefixWriter(Prefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// NewLogger creates a text or JSON logger at the given level
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	return New(Options{Name: name, Level: level, Output: output})
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if level == "" {
		level = DefaultLevel
	}
	return level
}

// JSONFromEnv reports whether DARKSTAR_JSON_LOG requests JSON output.
func JSONFromEnv() bool {
	return os.Getenv(EnvJSONLog) == "1"
}

// ValidLevel reports whether name is a level hclog understands.
func ValidLevel(name string) bool {
	return hclog.LevelFromString(name) != hclog.NoLevel
}
