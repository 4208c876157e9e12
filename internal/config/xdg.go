package config

import (
	"os"
	"path/filepath"
)

const appDir = "toptens"

// xdgHome resolves an XDG base directory from envKey, falling back to the
// given path under the user's home directory, or "." without a home.
func xdgHome(envKey string, fallback ...string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultConfigPath returns the TOML config path under XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return filepath.Join(xdgHome("XDG_CONFIG_HOME", ".config"), appDir, "config.toml")
}

// DefaultDBPath returns the run history database path under XDG_DATA_HOME.
func DefaultDBPath() string {
	return filepath.Join(xdgHome("XDG_DATA_HOME", ".local", "share"), appDir, "history.db")
}
