// Package config loads the darkstar command line configuration: an optional
// YAML file, overridden by environment variables, overridden by flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "DARKSTAR_CONFIG_DIR"

	// FileName is the configuration file inside the configuration directory.
	FileName = "config.yaml"

	appName = "darkstar"
)

// GetConfigDir returns the configuration directory
func GetConfigDir() string {
	// Check environment variable first
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}

	// Use platform-specific defaults
	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", appName)
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName)
		}
	}

	// Fallback to the working directory
	return "."
}

// DefaultPath returns the path of the configuration file
func DefaultPath() string {
	return filepath.Join(GetConfigDir(), FileName)
}
