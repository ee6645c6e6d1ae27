// Package config reads and writes the finsift.yaml project configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked for in the working directory.
const DefaultFileName = "finsift.yaml"

// Config represents the top-level finsift.yaml configuration.
type Config struct {
	Data       DataConfig        `yaml:"data"`
	Import     ImportConfig      `yaml:"import"`
	Watch      WatchConfig       `yaml:"watch"`
	Thresholds ThresholdsConfig  `yaml:"thresholds"`
	Accounts   map[string]string `yaml:"accounts,omitempty"` // code -> friendly name
	Fallback   FallbackConfig    `yaml:"fallback"`
}

// DataConfig locates the database and audit log.
type DataConfig struct {
	Dir      string `yaml:"dir"`
	DBFile   string `yaml:"db_file"`
	AuditLog string `yaml:"audit_log"`
}

// ImportConfig controls bulk import.
type ImportConfig struct {
	Dir string `yaml:"dir"`
}

// WatchConfig controls the background directory watcher.
type WatchConfig struct {
	Schedule string `yaml:"schedule"` // cron expression
}

// ThresholdsConfig holds the confidence floors.
type ThresholdsConfig struct {
	// Accept is the floor below which a classification is advisory only.
	Accept float64 `yaml:"accept"`
	// Learn is the floor below which classifications are not fed back into
	// the pattern store.
	Learn float64 `yaml:"learn"`
}

// FallbackConfig controls the optional LLM payee resolver.
type FallbackConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// Load reads a finsift.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:      "data",
			DBFile:   "finsift.db",
			AuditLog: "audit.csv",
		},
		Import: ImportConfig{
			Dir: "import",
		},
		Watch: WatchConfig{
			Schedule: "@every 1m",
		},
		Thresholds: ThresholdsConfig{
			Accept: 0.70,
			Learn:  0.70,
		},
		Fallback: FallbackConfig{
			Enabled:   false,
			APIKeyEnv: "OPENAI_API_KEY",
			Model:     "gpt-4o-mini",
		},
	}
}
