package healing

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rosterhq/roster/internal/infra/metrics"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

func newTestCB(t *testing.T) *CircuitBreaker {
	t.Helper()
	return NewCircuitBreaker(DefaultCircuitBreakerConfig())
}

func newTestCBWithClock(t *testing.T, now func() time.Time) *CircuitBreaker {
	t.Helper()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     1 * time.Second,
		HalfOpenMax:      2,
	})
	cb.now = now
	return cb
}

// ─── CBState.String ─────────────────────────────────────────────────────────

func TestCBState_String(t *testing.T) {
	tests := []struct {
		state CBState
		want  string
	}{
		{CBClosed, "CLOSED"},
		{CBOpen, "OPEN"},
		{CBHalfOpen, "HALF_OPEN"},
		{CBState(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("CBState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

// ─── Circuit Breaker State Transitions ──────────────────────────────────────

func TestCircuitBreaker_StartsInClosed(t *testing.T) {
	cb := newTestCB(t)
	if cb.State() != CBClosed {
		t.Errorf("initial state = %s, want CLOSED", cb.State())
	}
}

func TestCircuitBreaker_Closed_AllowsRequests(t *testing.T) {
	cb := newTestCB(t)
	if err := cb.Allow(); err != nil {
		t.Errorf("Allow() in CLOSED state should succeed, got %v", err)
	}
}

func TestCircuitBreaker_TripsToOpen(t *testing.T) {
	clock := time.Now()
	cb := newTestCBWithClock(t, func() time.Time { return clock })

	// 3 failures should trip the breaker (threshold=3)
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	if cb.State() != CBOpen {
		t.Errorf("state after %d failures = %s, want OPEN", 3, cb.State())
	}
}

func TestCircuitBreaker_Open_BlocksRequests(t *testing.T) {
	clock := time.Now()
	cb := newTestCBWithClock(t, func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	err := cb.Allow()
	if err == nil {
		t.Error("Allow() in OPEN state should return error")
	}
}

func TestCircuitBreaker_Open_TransitionsToHalfOpen(t *testing.T) {
	clock := time.Now()
	cb := newTestCBWithClock(t, func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	// Advance past reset timeout
	clock = clock.Add(2 * time.Second)
	cb.now = func() time.Time { return clock }

	if cb.State() != CBHalfOpen {
		t.Errorf("state after timeout = %s, want HALF_OPEN", cb.State())
	}
}

func TestCircuitBreaker_HalfOpen_AllowsProbes(t *testing.T) {
	clock := time.Now()
	cb := newTestCBWithClock(t, func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	clock = clock.Add(2 * time.Second)
	cb.now = func() time.Time { return clock }

	// Should allow in HALF_OPEN
	if err := cb.Allow(); err != nil {
		t.Errorf("Allow() in HALF_OPEN should succeed, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpen_SuccessCloses(t *testing.T) {
	clock := time.Now()
	cb := newTestCBWithClock(t, func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	clock = clock.Add(2 * time.Second)
	cb.now = func() time.Time { return clock }

	cb.Allow() // transition to HALF_OPEN

	// 2 successes should close (HalfOpenMax=2)
	cb.RecordSuccess()
	cb.RecordSuccess()

	if cb.State() != CBClosed {
		t.Errorf("state after %d successes in HALF_OPEN = %s, want CLOSED", 2, cb.State())
	}
}

func TestCircuitBreaker_HalfOpen_FailureReopens(t *testing.T) {
	clock := time.Now()
	cb := newTestCBWithClock(t, func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	clock = clock.Add(2 * time.Second)
	cb.now = func() time.Time { return clock }

	cb.Allow() // transition to HALF_OPEN
	cb.RecordFailure()

	if cb.State() != CBOpen {
		t.Errorf("state after failure in HALF_OPEN = %s, want OPEN", cb.State())
	}
}

func TestCircuitBreaker_Closed_SuccessDecaysFailures(t *testing.T) {
	cb := newTestCB(t)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess() // should decay 1 failure
	if got := cb.Failures(); got != 1 {
		t.Errorf("Failures() after 2 failures + 1 success = %d, want 1", got)
	}
}

// ─── Reset ──────────────────────────────────────────────────────────────────

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := newTestCB(t)
	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	cb.Reset()
	if cb.State() != CBClosed {
		t.Errorf("State after Reset() = %s, want CLOSED", cb.State())
	}
	if err := cb.Allow(); err != nil {
		t.Errorf("Allow() after Reset() = %v, want nil", err)
	}
}

// ─── embedding_circuit_state gauge ──────────────────────────────────────────

func TestCircuitBreaker_PublishesStateGauge(t *testing.T) {
	clock := time.Now()
	cb := newTestCBWithClock(t, func() time.Time { return clock })

	if got := testutil.ToFloat64(metrics.EmbeddingCircuitState); got != float64(CBClosed) {
		t.Errorf("embedding_circuit_state after construction = %v, want CLOSED (0)", got)
	}

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	if got := testutil.ToFloat64(metrics.EmbeddingCircuitState); got != float64(CBOpen) {
		t.Errorf("embedding_circuit_state after tripping = %v, want OPEN (1)", got)
	}
}
