// Package healing implements the circuit breaker guarding calls to the
// Embedding Provider (§5 "Embedding Provider calls carry a bounded
// timeout"). When the breaker trips, the Similarity Filter and Feature
// Extractor degrade to zero vectors for affected skills rather than
// blocking assignment (§4.1, §4.2, §7 "Transient external errors").
// Unlike the teacher's version of this breaker — one instance per
// peer node in a gossip mesh, tracked by name in a registry alongside
// a QuarantineManager and a deployment-rollback tracker — roster has
// exactly one guarded dependency (the embedding provider), so the
// breaker observes its own transitions directly into the
// embedding_circuit_state gauge instead of being named and looked up
// by a caller-supplied string.
//
// States: CLOSED (normal) -> errors exceed threshold -> OPEN (blocking)
// -> after timeout -> HALF_OPEN (probing) -> probe succeeds -> CLOSED,
// probe fails -> OPEN.
package healing

import (
	"errors"
	"sync"
	"time"

	"github.com/rosterhq/roster/internal/infra/metrics"
)

// CBState represents the circuit breaker state.
type CBState int

const (
	CBClosed   CBState = iota // Normal operation — requests pass through
	CBOpen                    // Tripped — all requests rejected immediately
	CBHalfOpen                // Recovery probe — limited traffic allowed
)

// String returns a human-readable circuit breaker state.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "CLOSED"
	case CBOpen:
		return "OPEN"
	case CBHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("embedding provider circuit open")

// CircuitBreakerConfig configures the breaker's trip/reset tunables.
type CircuitBreakerConfig struct {
	FailureThreshold int           // failure count that trips the breaker while closed; each success lowers the count by one (default 5)
	ResetTimeout     time.Duration // time in OPEN before probing again (default 5s, matching Embed's own call timeout)
	HalfOpenMax      int           // successful probes required to close (default 3)
}

// DefaultCircuitBreakerConfig returns the embedding provider's defaults
// (§5's 5s call timeout sets the scale for ResetTimeout: a breaker
// that stays open far longer than one call is worth would hide a
// provider recovering mid-batch).
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     5 * time.Second,
		HalfOpenMax:      3,
	}
}

// CircuitBreaker guards the embedding provider call inside
// embedding.CachingProvider. Thread-safe for concurrent use; a single
// instance is shared across every skill-embedding lookup.
type CircuitBreaker struct {
	mu        sync.Mutex
	config    CircuitBreakerConfig
	state     CBState
	failures  int
	successes int // successes seen in HALF_OPEN
	trippedAt time.Time
	now       func() time.Time // injectable clock for testing
}

// NewCircuitBreaker creates a breaker with the given config and
// publishes its initial (closed) state to embedding_circuit_state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{
		config: cfg,
		state:  CBClosed,
		now:    time.Now,
	}
	metrics.EmbeddingCircuitState.Set(float64(CBClosed))
	return cb
}

// Allow reports whether a provider call should proceed. Returns
// ErrCircuitOpen if the circuit is open and the reset timeout has not
// yet elapsed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CBOpen:
		if cb.now().Sub(cb.trippedAt) >= cb.config.ResetTimeout {
			cb.transitionLocked(CBHalfOpen)
			cb.successes = 0
			return nil
		}
		return ErrCircuitOpen
	default:
		return nil
	}
}

// RecordSuccess records a successful provider call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.HalfOpenMax {
			cb.transitionLocked(CBClosed)
			cb.failures = 0
			cb.successes = 0
		}
	case CBClosed:
		if cb.failures > 0 {
			cb.failures--
		}
	}
}

// RecordFailure records a failed provider call. May trip the breaker.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CBClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.trippedAt = cb.now()
			cb.transitionLocked(CBOpen)
		}
	case CBHalfOpen:
		cb.trippedAt = cb.now()
		cb.transitionLocked(CBOpen)
	}
}

// State returns the current circuit breaker state, auto-transitioning
// OPEN to HALF_OPEN once the reset timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && cb.now().Sub(cb.trippedAt) >= cb.config.ResetTimeout {
		cb.transitionLocked(CBHalfOpen)
		cb.successes = 0
	}
	return cb.state
}

// Failures returns the current consecutive-failure count while
// CLOSED (decayed on each success), for tests and diagnostics.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset forces the breaker back to closed, clearing failure history.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionLocked(CBClosed)
	cb.failures = 0
	cb.successes = 0
}

// transitionLocked updates state and publishes it to
// embedding_circuit_state. Caller must hold cb.mu.
func (cb *CircuitBreaker) transitionLocked(next CBState) {
	cb.state = next
	metrics.EmbeddingCircuitState.Set(float64(next))
}
