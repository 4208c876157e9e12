// Package config provides configuration helpers and TOML parsing.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Report  ReportConfig  `toml:"report"`
	History HistoryConfig `toml:"history"`
}

// ReportConfig maps report-related settings.
type ReportConfig struct {
	InputDir  *string `toml:"input-dir"`
	OutputDir *string `toml:"output-dir"`
	Verbose   *bool   `toml:"verbose"`
}

// HistoryConfig maps run history settings.
type HistoryConfig struct {
	Record *bool   `toml:"record"`
	DBPath *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, errors.New("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, errors.Wrap(err, "failed to stat config")
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, errors.Wrap(err, "failed to decode config")
	}
	return cfg, nil
}
