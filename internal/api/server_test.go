package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rosterhq/roster/internal/health"
	"github.com/rosterhq/roster/internal/infra/sqlite"
)

func newTestServer(t *testing.T) (*Server, *health.Checker) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	checker := health.NewChecker(db, time.Hour, time.Now())
	return NewServer(checker), checker
}

func TestHealthz_OKWhenHealthy(t *testing.T) {
	srv, checker := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	go checker.Run(ctx)
	t.Cleanup(cancel)
	time.Sleep(20 * time.Millisecond) // let Run's immediate runAll land

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if healthy, _ := body["healthy"].(bool); !healthy {
		t.Errorf("body.healthy = %v, want true", body["healthy"])
	}
}

func TestHealthz_OKBeforeFirstRun(t *testing.T) {
	// runAll has never populated statuses, so Statuses() is empty and
	// IsHealthy() vacuously reports true — matches checker_test.go's
	// TestChecker_IsHealthy_BeforeRun. The endpoint must agree.
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (no checks run yet is vacuously healthy)", rec.Code, http.StatusOK)
	}
}

func TestMetrics_NotMountedByDefault(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("/metrics should not be mounted until EnableMetrics() is called")
	}
}

func TestMetrics_MountedAfterEnable(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.EnableMetrics()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d once metrics are enabled", rec.Code, http.StatusOK)
	}
}

func TestUnknownRoute_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
