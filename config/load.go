package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the project file looked for in the working directory
const FileName = "ruff.yaml"

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults() when there is no file.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path. The path is empty when the defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Defaults(), "", nil
	}

	// Get absolute path and directory for resolving relative paths
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = baseDir
	for i, dir := range cfg.Modules.SearchPaths {
		cfg.Modules.SearchPaths[i] = resolve(baseDir, dir)
	}
	cfg.Tests.Dir = resolve(baseDir, cfg.Tests.Dir)
	cfg.Tests.Report = resolve(baseDir, cfg.Tests.Report)
	cfg.REPL.HistoryFile = resolve(baseDir, cfg.REPL.HistoryFile)

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Validate checks the configuration for values the tools cannot use
func Validate(cfg *Config) error {
	if len(cfg.Modules.SearchPaths) == 0 {
		return fmt.Errorf("modules.search_paths must name at least one directory")
	}
	if cfg.Tests.Dir == "" {
		return fmt.Errorf("tests.dir must not be empty")
	}
	for _, ext := range []struct{ key, value string }{
		{"tests.source_ext", cfg.Tests.SourceExt},
		{"tests.expected_ext", cfg.Tests.ExpectedExt},
	} {
		if !strings.HasPrefix(ext.value, ".") || len(ext.value) < 2 {
			return fmt.Errorf("%s must be a file extension starting with '.', got %q", ext.key, ext.value)
		}
	}
	if cfg.Tests.SourceExt == cfg.Tests.ExpectedExt {
		return fmt.Errorf("tests.source_ext and tests.expected_ext must differ (both %q)", cfg.Tests.SourceExt)
	}
	if cfg.Tests.Debounce <= 0 {
		return fmt.Errorf("tests.debounce must be positive, got %s", cfg.Tests.Debounce)
	}
	if cfg.Database.MaxOpen < 1 {
		return fmt.Errorf("database.max_open must be at least 1, got %d", cfg.Database.MaxOpen)
	}
	return nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > RUFF_CONFIG env > ./ruff.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try RUFF_CONFIG environment variable
	if envPath := getenv("RUFF_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("RUFF_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	// Try ./ruff.yaml
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
