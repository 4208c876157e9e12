package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Default report directories, relative to the working directory.
const (
	DefaultInputDir  = "input"
	DefaultOutputDir = "output"
)

// Settings holds report settings resolved from defaults, the config file and
// the environment. CLI flags are applied on top by the caller.
type Settings struct {
	InputDir  string `env:"TOPTENS_INPUT_DIR"`
	OutputDir string `env:"TOPTENS_OUTPUT_DIR"`
	Verbose   bool   `env:"TOPTENS_VERBOSE"`
	Record    bool   `env:"TOPTENS_RECORD"`
	DBPath    string `env:"TOPTENS_DB_PATH"`
}

// DefaultSettings returns built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		InputDir:  DefaultInputDir,
		OutputDir: DefaultOutputDir,
		Verbose:   true,
		DBPath:    DefaultDBPath(),
	}
}

// ApplyFile overrides settings with values present in the config file.
func (s *Settings) ApplyFile(fc FileConfig) {
	applyString(&s.InputDir, fc.Report.InputDir)
	applyString(&s.OutputDir, fc.Report.OutputDir)
	applyBool(&s.Verbose, fc.Report.Verbose)
	applyBool(&s.Record, fc.History.Record)
	applyString(&s.DBPath, fc.History.DBPath)
}

// ApplyEnv overrides settings with TOPTENS_* variables. A nil environ reads
// the process environment. Unset variables leave settings untouched.
func (s *Settings) ApplyEnv(environ map[string]string) error {
	if err := env.Parse(s, env.Options{Environment: environ}); err != nil {
		return errors.Wrap(err, "failed to parse environment")
	}
	return nil
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

// Resolve builds settings from defaults, the config file at configPath, the
// .env file at dotenvPath and the process environment.
func Resolve(configPath, dotenvPath string) (Settings, error) {
	s := DefaultSettings()
	fc, err := LoadConfig(configPath)
	if err != nil {
		return Settings{}, err
	}
	s.ApplyFile(fc)
	if err := LoadDotEnv(dotenvPath); err != nil {
		return Settings{}, err
	}
	if err := s.ApplyEnv(nil); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyString(target, value *string) {
	if value == nil {
		return
	}
	*target = *value
}

func applyBool(target, value *bool) {
	if value == nil {
		return
	}
	*target = *value
}
