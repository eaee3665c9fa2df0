package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the rbxc configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the rbxc configuration directory
const ConfigDirName = ".rbxc"

// Config holds all rbxc configuration
type Config struct {
	Build BuildConfig `yaml:"build"`
	Entry EntryConfig `yaml:"entry"`
	Check CheckConfig `yaml:"check"`
}

// BuildConfig holds configuration for compiling a source tree into a
// model document.
type BuildConfig struct {
	// ContainerClass is the instance class used for directory nodes
	// and for chunked-value containers.
	ContainerClass string `yaml:"container_class"`
	// RootName overrides the root node's Name property. Empty means
	// the source directory's base name.
	RootName string `yaml:"root_name"`
	// Outputs lists the destination paths the assembled document is
	// written to.
	Outputs []string `yaml:"outputs"`
	// Ignore lists directory entries skipped during traversal.
	Ignore []string `yaml:"ignore"`
	// MaxValueLength is the longest literal text a single string
	// property may carry; longer content is chunked.
	MaxValueLength int `yaml:"max_value_length"`
}

// EntryConfig names the two reserved top-level entry scripts. The
// names are matched against the file stem (the part before the first
// dot), so an unrelated extension cannot defeat them.
type EntryConfig struct {
	Server string `yaml:"server"`
	Client string `yaml:"client"`
}

// CheckConfig holds configuration for the best-effort script checks.
// Syntax is a pointer so an explicit `syntax: false` in the file is
// distinguishable from the field being absent.
type CheckConfig struct {
	Syntax *bool `yaml:"syntax"`
}

// SyntaxEnabled reports whether the Lua syntax pre-check is on.
// An unset field means enabled.
func (c CheckConfig) SyntaxEnabled() bool {
	return c.Syntax == nil || *c.Syntax
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .rbxc/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and
// walking up the directory tree. If no config is found, returns
// defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .rbxc directory by walking up from
// startDir. Returns the path to the .rbxc directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .rbxc directory if it doesn't exist.
// Returns the path to the .rbxc directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if cfg.Build.ContainerClass == "" {
		return fmt.Errorf("%w: container_class must not be empty", ErrInvalidConfig)
	}

	if cfg.Build.MaxValueLength <= 0 {
		return fmt.Errorf("%w: max_value_length must be positive, got %d",
			ErrInvalidConfig, cfg.Build.MaxValueLength)
	}

	if len(cfg.Build.Outputs) == 0 {
		return fmt.Errorf("%w: at least one output path is required", ErrInvalidConfig)
	}
	for _, out := range cfg.Build.Outputs {
		if out == "" {
			return fmt.Errorf("%w: output paths must not be empty", ErrInvalidConfig)
		}
	}

	if cfg.Entry.Server == "" || cfg.Entry.Client == "" {
		return fmt.Errorf("%w: entry names must not be empty", ErrInvalidConfig)
	}
	if cfg.Entry.Server == cfg.Entry.Client {
		return fmt.Errorf("%w: server and client entry names must differ, both are %q",
			ErrInvalidConfig, cfg.Entry.Server)
	}

	return nil
}
