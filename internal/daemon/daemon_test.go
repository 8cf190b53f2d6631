package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Storage.Dir = t.TempDir()
	cfg.API.Port = 0

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestNewWithConfig_WiresEngineAndHealth(t *testing.T) {
	d := newTestDaemon(t)

	if d.Engine == nil {
		t.Error("Engine is nil")
	}
	if d.Health == nil {
		t.Error("Health is nil")
	}
	if d.Server == nil {
		t.Error("Server is nil")
	}
	if err := d.DB.Ping(); err != nil {
		t.Errorf("DB.Ping() error: %v", err)
	}
}

func TestNewWithConfig_MetricsOptIn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Dir = t.TempDir()
	cfg.Telemetry.Prometheus = true

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	t.Cleanup(d.Close)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	d.Server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d when Telemetry.Prometheus is true", rec.Code, http.StatusOK)
	}
}

func TestDaemon_HealthzReflectsRunningChecker(t *testing.T) {
	d := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Health.Run(ctx)
	t.Cleanup(cancel)
	time.Sleep(20 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	d.Server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestClose_IsIdempotentSafe(t *testing.T) {
	d := newTestDaemon(t)
	d.Close()
	// t.Cleanup will call Close() again; must not panic.
}
