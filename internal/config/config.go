package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/Kryklin/darkstar/go/darkstar/pkg/logging"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/utils/permissions"
)

// Environment overrides besides the logging ones.
const (
	EnvWorkers    = "DARKSTAR_WORKERS"
	EnvOutputMode = "DARKSTAR_OUTPUT_MODE"

	// MaxWorkers bounds the per-word worker pool.
	MaxWorkers = 256
)

// Config is the command line configuration.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	JSONLog    bool   `yaml:"json_log"`
	Workers    int    `yaml:"workers"`     // 0 picks one per CPU
	OutputMode string `yaml:"output_mode"` // octal, for files written with --output
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:   logging.DefaultLevel,
		OutputMode: permissions.FormatOctal(permissions.DefaultFilePerms),
	}
}

// Load reads the configuration file at path, applies environment
// overrides and validates the result. An empty path means DefaultPath,
// which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no file, defaults apply
	default:
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DARKSTAR_* environment variables.
func (c *Config) ApplyEnv() error {
	if level := strings.TrimSpace(os.Getenv(logging.EnvLogLevel)); level != "" {
		c.LogLevel = level
	}
	if logging.JSONFromEnv() {
		c.JSONLog = true
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvOutputMode); v != "" {
		c.OutputMode = v
	}
	return nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 0 and %d, got %d", MaxWorkers, c.Workers)
	}
	if _, err := permissions.ParseOctalString(c.OutputMode); err != nil {
		return fmt.Errorf("output mode: %w", err)
	}
	return nil
}

// FileMode returns the parsed OutputMode.
func (c Config) FileMode() os.FileMode {
	mode, err := permissions.ParseOctalString(c.OutputMode)
	if err != nil {
		return permissions.DefaultFilePerms
	}
	return mode
}
