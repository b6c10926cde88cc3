// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Constants for default paths.
const (
	DefaultConfigDir      = ".apivet"
	DefaultConfigFileName = "config.yaml"
)

// Defaults for execution knobs. The concurrency and timeout values bound how
// hard a run leans on the target; probes are never retried, so these are the
// only throttles.
const (
	DefaultConcurrency    = 5
	DefaultTimeoutSeconds = 10
	DefaultSnippetCap     = 500
	DefaultBodyCap        = 1000
)

// Config holds the global application configuration.
type Config struct {
	// DataDir is where accepted plans, run summaries and failure records
	// are persisted.
	DataDir string `yaml:"data_dir"`

	// Execution knobs.
	Concurrency    int `yaml:"concurrency"`
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Sanitizer caps (characters).
	SnippetCap int `yaml:"snippet_cap"`
	BodyCap    int `yaml:"body_cap"`

	// AnalyzerURL is the endpoint of the external failure analyzer.
	// Empty disables enrichment; reports then carry placeholders.
	AnalyzerURL string `yaml:"analyzer_url"`

	// RulesFile points to an optional custom classification rules file.
	RulesFile string `yaml:"rules_file"`
}

// NewDefaultConfig creates a default configuration.
func NewDefaultConfig() *Config {
	return &Config{
		DataDir:        ExpandPathWithTilde("~/" + DefaultConfigDir + "/data"),
		Concurrency:    DefaultConcurrency,
		TimeoutSeconds: DefaultTimeoutSeconds,
		SnippetCap:     DefaultSnippetCap,
		BodyCap:        DefaultBodyCap,
	}
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpandPathWithTilde expands ~ to the user home directory. It respects the
// APIVET_HOME environment variable for testing purposes.
func ExpandPathWithTilde(path string) string {
	if path == "~" {
		home := getHomeDir()
		if home == "" {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home := getHomeDir()
		if home == "" {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func getHomeDir() string {
	if apivetHome := os.Getenv("APIVET_HOME"); apivetHome != "" {
		return apivetHome
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// GlobalConfigFilePath returns the absolute path of the global config file.
// It respects the APIVET_HOME environment variable for testing purposes.
func GlobalConfigFilePath() (string, error) {
	var home string

	if apivetHome := os.Getenv("APIVET_HOME"); apivetHome != "" {
		home = apivetHome
	} else {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
	}

	return filepath.Join(home, DefaultConfigDir, DefaultConfigFileName), nil
}

// LoadConfig loads the application configuration. It starts with defaults,
// then merges settings from the global configuration file when present.
// The globalConfigPathOverride parameter allows specifying a custom path for
// the global config file, primarily for testing. If empty, the default path
// (~/.apivet/config.yaml) is used.
func LoadConfig(globalConfigPathOverride string) (*Config, error) {
	config := NewDefaultConfig()

	var globalConfigPath string
	var err error
	if globalConfigPathOverride != "" {
		globalConfigPath = ExpandPathWithTilde(globalConfigPathOverride)
	} else {
		globalConfigPath, err = GlobalConfigFilePath()
		if err != nil {
			fmt.Printf("Warning: could not determine global config path: %v\n", err)
			globalConfigPath = ""
		}
	}

	if globalConfigPath != "" {
		globalConfig, err := LoadConfigFile(globalConfigPath)
		if err == nil {
			mergeConfigs(config, globalConfig)
		} else if !os.IsNotExist(err) {
			fmt.Printf("Warning: could not load global config file '%s': %v\n", globalConfigPath, err)
		}
	}

	return config, nil
}

// LoadConfigFile loads a configuration from a specific file path.
func LoadConfigFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}

// mergeConfigs merges source config into target config.
// Only non-zero values from source override target.
func mergeConfigs(target, source *Config) {
	if source.DataDir != "" {
		target.DataDir = ExpandPathWithTilde(source.DataDir)
	}
	if source.Concurrency > 0 {
		target.Concurrency = source.Concurrency
	}
	if source.TimeoutSeconds > 0 {
		target.TimeoutSeconds = source.TimeoutSeconds
	}
	if source.SnippetCap > 0 {
		target.SnippetCap = source.SnippetCap
	}
	if source.BodyCap > 0 {
		target.BodyCap = source.BodyCap
	}
	if source.AnalyzerURL != "" {
		target.AnalyzerURL = source.AnalyzerURL
	}
	if source.RulesFile != "" {
		target.RulesFile = ExpandPathWithTilde(source.RulesFile)
	}
}

// SaveGlobalConfig saves the provided configuration to the global config path.
func SaveGlobalConfig(config *Config) error {
	globalPath, err := GlobalConfigFilePath()
	if err != nil {
		return fmt.Errorf("could not determine global config path for saving: %w", err)
	}

	globalDir := filepath.Dir(globalPath)
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		return fmt.Errorf("error creating global config directory '%s': %w", globalDir, err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling global config: %w", err)
	}

	if err := os.WriteFile(globalPath, data, 0644); err != nil {
		return fmt.Errorf("error writing global config file '%s': %w", globalPath, err)
	}

	return nil
}
