// Package config provides layered configuration for relnotes using koanf.
// Configuration is loaded with priority: environment variables (RELNOTES_*)
// > project config (.relnotes.yml) > user config (~/.config/relnotes/config.yml)
// > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "RELNOTES_"

// Configuration represents the relnotes tool configuration
type Configuration struct {
	// ChangelogFile is used when no changelog argument is given.
	ChangelogFile string `koanf:"changelog_file" validate:"required"`
	// Header is the top-level heading line entries are anchored to.
	Header string `koanf:"header" validate:"required"`
	// Anchor selects the insertion point: "header" (after the header line)
	// or "entry" (before the first dated entry).
	Anchor string `koanf:"anchor" validate:"oneof=header entry"`
	// CreateMissing starts a new changelog when the file does not exist.
	CreateMissing bool `koanf:"create_missing"`
	// NormalizeBullets rewrites "* " list markers to "- ".
	NormalizeBullets bool `koanf:"normalize_bullets"`
	// Formatter is run on the changelog after writing, with the path appended.
	// Empty disables formatting.
	Formatter string `koanf:"formatter"`
	// GhCmd is the GitHub CLI executable.
	GhCmd string `koanf:"gh_cmd" validate:"required"`
	// Host is the GitHub web host used for compare links.
	Host string `koanf:"host" validate:"required,hostname_rfc1123"`
	// Timeout bounds each external command, in seconds (0 = no timeout).
	Timeout int `koanf:"timeout" validate:"min=0,max=3600"`
}

// CommandTimeout returns Timeout as a duration.
func (c *Configuration) CommandTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectDir holds the project config file (default: current directory).
	ProjectDir string
	// ConfigPath overrides the project config path. Unlike the default
	// location, an explicit path must exist.
	ConfigPath string
	// SkipUserConfig ignores the user-level config file.
	SkipUserConfig bool
}

// Load loads configuration from defaults, user, project, and environment sources.
func Load(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads ~/.config/relnotes/config.yml when present.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project config; an explicit path must exist.
func loadProjectConfig(k *koanf.Koanf, opts LoadOptions) error {
	path := ProjectConfigPath(opts.ProjectDir)
	if opts.ConfigPath != "" {
		path = opts.ConfigPath
		if !fileExists(path) {
			return &ValidationError{FilePath: path, Message: "config file not found"}
		}
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "project"); err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := checkSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := checkValues(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: RELNOTES_CHANGELOG_FILE -> changelog_file
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
