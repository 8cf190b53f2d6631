package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8080)
	}
	if cfg.Embedding.Dim != 1536 {
		t.Errorf("Embedding.Dim = %d, want %d", cfg.Embedding.Dim, 1536)
	}
	if cfg.Similarity.K != 3 {
		t.Errorf("Similarity.K = %d, want 3", cfg.Similarity.K)
	}
	if cfg.Bandit.Alpha != 1.0 || cfg.Bandit.Lambda != 1.0 {
		t.Errorf("Bandit = %+v, want Alpha=1.0 Lambda=1.0", cfg.Bandit)
	}
}

func TestRosterHome_DefaultsUnderUserHome(t *testing.T) {
	t.Setenv("ROSTER_HOME", "")
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".roster")
	if got := rosterHome(); got != want {
		t.Errorf("rosterHome() = %q, want %q", got, want)
	}
}

func TestRosterHome_HonorsEnvOverride(t *testing.T) {
	t.Setenv("ROSTER_HOME", "/tmp/custom-roster-home")
	if got := rosterHome(); got != "/tmp/custom-roster-home" {
		t.Errorf("rosterHome() = %q, want /tmp/custom-roster-home", got)
	}
}

func TestLoadConfig_NoFileReturnsDefaults(t *testing.T) {
	t.Setenv("ROSTER_HOME", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Similarity.K != 3 {
		t.Errorf("Similarity.K = %d, want 3 (defaults, no config.toml present)", cfg.Similarity.K)
	}
}

func TestSaveConfig_RoundTrips(t *testing.T) {
	t.Setenv("ROSTER_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Bandit.Alpha = 2.5
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.Bandit.Alpha != 2.5 {
		t.Errorf("loaded Bandit.Alpha = %v, want 2.5", loaded.Bandit.Alpha)
	}
}
