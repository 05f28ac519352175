package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// configFile is the project-local config file name.
const configFile = "powertree.toml"

// Config holds CLI defaults read from an optional TOML config file.
// Command-line flags override config values; config values override the
// built-in defaults.
type Config struct {
	// Scenario is the default operating scenario for commands that accept
	// --scenario: "typical", "max", or "idle".
	Scenario string `toml:"scenario"`
	// GraphFormat is the default output format for the graph command.
	GraphFormat string `toml:"graph_format"`
	// Detailed enables detailed node labels in the graph command.
	Detailed bool `toml:"detailed"`
	// CacheEntries bounds the in-process result memo (0 uses the default).
	CacheEntries int `toml:"cache_entries"`
}

// loadConfig reads the config file, preferring powertree.toml in the working
// directory over the user-level config. A missing file yields the zero
// config; a malformed file is an error.
func loadConfig(logger *log.Logger) (Config, error) {
	path := findConfig()
	if path == "" {
		return Config{}, nil
	}
	return readConfig(path, logger)
}

// readConfig parses one TOML config file.
func readConfig(path string, logger *log.Logger) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	logger.Debugf("Loaded config from %s", path)
	return cfg, nil
}

// findConfig returns the first config file that exists, or "" when none does.
func findConfig() string {
	if _, err := os.Stat(configFile); err == nil {
		return configFile
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// configDir returns the user config directory using XDG standard
// (~/.config/powertree/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
