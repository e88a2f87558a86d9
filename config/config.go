// Package config loads the optional ruff.yaml project file.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete Ruff project configuration
type Config struct {
	BaseDir  string         `yaml:"-"` // Directory containing config file, for resolving relative paths
	Modules  ModulesConfig  `yaml:"modules"`
	Tests    TestsConfig    `yaml:"tests"`
	REPL     REPLConfig     `yaml:"repl"`
	Database DatabaseConfig `yaml:"database"`
}

// ModulesConfig controls where imports are resolved
type ModulesConfig struct {
	SearchPaths StringOrSlice `yaml:"search_paths"` // Directories searched in order for <name>.ruff
}

// TestsConfig holds golden test settings
type TestsConfig struct {
	Dir         string        `yaml:"dir"`          // Fixture directory (default: "tests")
	SourceExt   string        `yaml:"source_ext"`   // Fixture extension (default: ".ruff")
	ExpectedExt string        `yaml:"expected_ext"` // Snapshot extension (default: ".out")
	Report      string        `yaml:"report"`       // HTML report path, empty for none
	Debounce    time.Duration `yaml:"debounce"`     // Watch mode quiet period (default: 200ms)
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	HistoryFile string `yaml:"history_file"`
}

// DatabaseConfig holds settings for db_connect
type DatabaseConfig struct {
	MaxOpen int `yaml:"max_open"` // Maximum open connections per handle (default: 4)
}

// StringOrSlice supports YAML fields that can be either a string or a slice of strings
type StringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler to handle both string and []string
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var slice []string
	if err := unmarshal(&slice); err != nil {
		return err
	}
	*s = slice
	return nil
}

// Contains checks if the slice contains the given string
func (s StringOrSlice) Contains(str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Modules: ModulesConfig{
			SearchPaths: StringOrSlice{".", "./modules"},
		},
		Tests: TestsConfig{
			Dir:         "tests",
			SourceExt:   ".ruff",
			ExpectedExt: ".out",
			Debounce:    200 * time.Millisecond,
		},
		REPL: REPLConfig{
			HistoryFile: filepath.Join(os.TempDir(), ".ruff_history"),
		},
		Database: DatabaseConfig{
			MaxOpen: 4,
		},
	}
}
