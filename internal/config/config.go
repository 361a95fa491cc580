// Package config provides configuration file support for ttlctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvBackend    = "TTLCTL_BACKEND"
	EnvSysctlPath = "TTLCTL_SYSCTL_PATH"
	EnvLogLevel   = "TTLCTL_LOG_LEVEL"
)

// Config represents the ttlctl configuration file structure.
type Config struct {
	// Defaults are applied when flags are not specified
	Defaults Defaults `yaml:"defaults"`

	// Log controls the logger
	Log Log `yaml:"log"`

	// Presets map names to TTL values, usable as "ttlctl set <name>"
	Presets map[string]int `yaml:"presets,omitempty" validate:"dive,min=0,max=255"`
}

// Defaults holds default values for command behaviour.
type Defaults struct {
	// Kernel parameter backend: sysctl, procfs, memory
	Backend string `yaml:"backend" validate:"oneof=sysctl procfs memory"`

	// Path of the sysctl binary (sysctl backend only)
	SysctlPath string `yaml:"sysctl_path" validate:"required"`

	// Output mode
	JSON    bool `yaml:"json"`
	Verbose bool `yaml:"verbose"`
	NoColor bool `yaml:"no_color"`
}

// Log holds logger settings.
type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
	Color bool   `yaml:"color"`
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			Backend:    "sysctl",
			SysctlPath: "sysctl",
			JSON:       false,
			Verbose:    false,
			NoColor:    false,
		},
		Log: Log{
			Level: "warn",
			Color: true,
		},
		Presets: map[string]int{
			"linux":   64,
			"macos":   64,
			"windows": 128,
		},
	}
}

// Load reads configuration from the default config file locations.
// It searches in order:
//  1. ./ttlctl.yaml (current directory)
//  2. ~/.config/ttlctl/config.yaml (Linux/macOS)
//  3. %APPDATA%\ttlctl\config.yaml (Windows)
//
// If no config file is found, returns default configuration. Environment
// overrides are applied in both cases.
func Load() (*Config, error) {
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return LoadFrom(path)
		}
	}

	config := DefaultConfig()
	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. Variables already set are left alone; a missing file is not
// an error.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// ApplyEnv overrides config values with TTLCTL_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Defaults.Backend = v
	}
	if v := os.Getenv(EnvSysctlPath); v != "" {
		c.Defaults.SysctlPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Preset looks up a named TTL preset.
func (c *Config) Preset(name string) (int, bool) {
	v, ok := c.Presets[name]
	return v, ok
}

// PresetNames returns preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the configuration to the default user config path.
func (c *Config) Save() error {
	return c.SaveTo(getUserConfigPath())
}

// SaveTo writes the configuration to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPaths returns the list of config file paths to search.
func getConfigPaths() []string {
	paths := []string{
		"ttlctl.yaml",
		"ttlctl.yml",
		".ttlctl.yaml",
		".ttlctl.yml",
	}

	// Add user config path
	userPath := getUserConfigPath()
	if userPath != "" {
		paths = append(paths, userPath)
	}

	return paths
}

// getUserConfigPath returns the user-specific config file path.
func getUserConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "ttlctl", "config.yaml")
		}
	default: // Linux, macOS, etc.
		// Check XDG_CONFIG_HOME first
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig != "" {
			return filepath.Join(xdgConfig, "ttlctl", "config.yaml")
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config", "ttlctl", "config.yaml")
		}
	}
	return ""
}

// GetConfigPath returns the path where user config would be saved.
func GetConfigPath() string {
	return getUserConfigPath()
}

// GenerateExample generates an example configuration file content.
func GenerateExample() string {
	return `# ttlctl Configuration File
# Location: ~/.config/ttlctl/config.yaml (Linux/macOS)
#           %APPDATA%\ttlctl\config.yaml (Windows)
#           ./ttlctl.yaml (current directory)
#
# TTLCTL_BACKEND, TTLCTL_SYSCTL_PATH and TTLCTL_LOG_LEVEL (also read from
# ./.env) override the values below.

defaults:
  backend: sysctl         # sysctl, procfs (Linux /proc/sys) or memory (dry run)
  sysctl_path: sysctl     # sysctl binary for the sysctl backend

  # Output mode
  json: false             # JSON output
  verbose: false          # Detailed table output
  no_color: false         # Disable colors

log:
  level: warn             # debug, info, warn, error
  json: false
  color: true
  # file: /var/log/ttlctl.log

# Named TTL values for "ttlctl set <name>"
presets:
  linux: 64
  macos: 64
  windows: 128
`
}
