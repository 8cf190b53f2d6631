// Package daemon manages the roster engine's process lifecycle and
// configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Storage    StorageConfig    `toml:"storage"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Similarity SimilarityConfig `toml:"similarity"`
	Bandit     BanditConfig     `toml:"bandit"`
	Logging    LoggingConfig    `toml:"logging"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Health     HealthConfig     `toml:"health"`
}

// APIConfig controls the ops HTTP server (§1.1 "/healthz and /metrics").
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig controls the SQLite data directory.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// EmbeddingConfig names the embedding provider and its fixed dimension
// D (§4.1 "D is a configuration constant").
type EmbeddingConfig struct {
	Provider string `toml:"provider"` // "deterministic" is the only built-in provider
	Dim      int    `toml:"dim"`
}

// SimilarityConfig controls the Skill Similarity Filter's cutoff (§4.2).
type SimilarityConfig struct {
	K int `toml:"k"`
}

// BanditConfig controls the Contextual Bandit's tunables (§4.4).
type BanditConfig struct {
	Alpha  float64 `toml:"alpha"`
	Lambda float64 `toml:"lambda"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// TelemetryConfig controls observability.
type TelemetryConfig struct {
	Prometheus     bool `toml:"prometheus"`
	PrometheusPort int  `toml:"prometheus_port"`
}

// HealthConfig controls the bandit_arms health check's warm-up window
// (§"health" — zero arms past this window is treated as unhealthy).
type HealthConfig struct {
	MinArmsAfterMinutes int `toml:"min_arms_after_minutes"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	home := rosterHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Storage: StorageConfig{
			Dir: home,
		},
		Embedding: EmbeddingConfig{
			Provider: "deterministic",
			Dim:      1536,
		},
		Similarity: SimilarityConfig{
			K: 3,
		},
		Bandit: BanditConfig{
			Alpha:  1.0,
			Lambda: 1.0,
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      filepath.Join(home, "roster.log"),
			MaxSizeMB: 50,
			MaxFiles:  5,
		},
		Telemetry: TelemetryConfig{
			Prometheus:     false, // opt-in: expose /metrics
			PrometheusPort: 9090,
		},
		Health: HealthConfig{
			MinArmsAfterMinutes: 60,
		},
	}
}

// LoadConfig reads config from $ROSTER_HOME/config.toml, falling back
// to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(rosterHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $ROSTER_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(rosterHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// rosterHome returns the roster data directory.
func rosterHome() string {
	if env := os.Getenv("ROSTER_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".roster")
}

// RosterHome is exported for use by other packages.
func RosterHome() string {
	return rosterHome()
}
