package health

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewChecker(t *testing.T) {
	db := newTestDB(t)

	c := NewChecker(db, time.Hour, time.Now())
	if c == nil {
		t.Fatal("NewChecker() returned nil")
	}
	if len(c.checks) != 2 {
		t.Errorf("checks = %d, want 2", len(c.checks))
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	db := newTestDB(t)

	c := NewChecker(db, time.Hour, time.Now())
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("Statuses() = %d, want 2", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
}

func TestChecker_IsHealthy_AllPass(t *testing.T) {
	db := newTestDB(t)

	c := NewChecker(db, time.Hour, time.Now())
	c.runAll(context.Background())

	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, time.Hour, time.Now())

	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_SQLiteCheck(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, time.Hour, time.Now())
	c.runAll(context.Background())

	found := false
	for _, s := range c.Statuses() {
		if s.Name == "sqlite" {
			found = true
			if !s.Healthy {
				t.Errorf("sqlite check should be healthy")
			}
		}
	}
	if !found {
		t.Error("sqlite check not found in statuses")
	}
}

func TestChecker_BanditArmsCheck_FailsAfterWarmupWithNoArms(t *testing.T) {
	db := newTestDB(t)
	startedAt := time.Now().Add(-2 * time.Hour)
	c := NewChecker(db, time.Hour, startedAt)
	c.runAll(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "bandit_arms" && s.Healthy {
			t.Error("bandit_arms check should fail with no arms after the warm-up window")
		}
	}
}

func TestChecker_BanditArmsCheck_PassesWithinWarmup(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, time.Hour, time.Now())
	c.runAll(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "bandit_arms" && !s.Healthy {
			t.Errorf("bandit_arms check should pass within the warm-up window, got: %s", s.Error)
		}
	}
}

func TestChecker_BanditArmsCheck_PassesOnceArmExists(t *testing.T) {
	db := newTestDB(t)
	if err := db.SaveBanditState(context.Background(), domain.NewBanditState("e1", 3, 1.0)); err != nil {
		t.Fatalf("SaveBanditState: %v", err)
	}

	startedAt := time.Now().Add(-2 * time.Hour)
	c := NewChecker(db, time.Hour, startedAt)
	c.runAll(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "bandit_arms" && !s.Healthy {
			t.Errorf("bandit_arms check should pass once an arm is learned, got: %s", s.Error)
		}
	}
}

func TestChecker_CustomCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{Name: "always_pass", CheckFn: func(ctx context.Context) error { return nil }},
		},
	}
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	if !statuses[0].Healthy {
		t.Error("always_pass check should be healthy")
	}
}

func TestChecker_FailingCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{Name: "always_fail", CheckFn: func(ctx context.Context) error { return os.ErrPermission }},
		},
	}
	c.runAll(context.Background())

	statuses := c.Statuses()
	if statuses[0].Healthy {
		t.Error("always_fail check should not be healthy")
	}
	if statuses[0].Error == "" {
		t.Error("error message should be populated")
	}
}

func TestChecker_StatusesCopy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, time.Hour, time.Now())
	c.runAll(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()
	if len(s1) > 0 {
		s1[0].Healthy = false
		if !s2[0].Healthy {
			t.Error("Statuses() should return a copy, not a reference")
		}
	}
}
