// Package bandit implements the disjoint LinUCB contextual bandit (§4.4):
// one ridge-regression model per arm, selected by an upper-confidence
// bound score, updated online from observed rewards.
package bandit

import (
	"errors"
	"log"
	"math"
	"sort"

	"github.com/rosterhq/roster/internal/domain"
)

// Config holds the tunables named in §6 "Configuration".
type Config struct {
	Alpha  float64 // exploration weight, default 1.0
	Lambda float64 // ridge prior, default 1.0
}

// DefaultConfig returns the spec's default Alpha=1.0, Lambda=1.0.
func DefaultConfig() Config {
	return Config{Alpha: 1.0, Lambda: 1.0}
}

// Candidate is one arm under consideration for a selection decision:
// an employee id, the context vector computed for that (task, employee)
// pair, and the two tie-break fields from §4.2/§4.4.
type Candidate struct {
	EmployeeID        string
	Context           domain.Vector
	ProductivityScore float64
	Workload          int
}

// Bandit selects and learns over per-arm BanditState. It holds no state
// of its own — callers load/save BanditState through domain.Store so the
// arm-level atomicity required by §4.4/§5 is the storage layer's job, not
// this package's.
type Bandit struct {
	cfg Config
}

// New returns a Bandit configured with cfg.
func New(cfg Config) *Bandit {
	if cfg.Alpha <= 0 {
		cfg.Alpha = 1.0
	}
	if cfg.Lambda <= 0 {
		cfg.Lambda = 1.0
	}
	return &Bandit{cfg: cfg}
}

// Select returns the winning candidate's employee id by UCB score (P4).
// states must contain one entry per candidate, keyed by employee id;
// a missing entry is treated as cold-start (A=λI, b=0) rather than an
// error, since an arm is created lazily on first observation (§3
// lifecycle).
func (b *Bandit) Select(candidates []Candidate, states map[string]domain.BanditState) (string, error) {
	if len(candidates) == 0 {
		return "", errors.New("bandit: no candidates")
	}

	type scored struct {
		Candidate
		ucb float64
	}
	scoredArms := make([]scored, 0, len(candidates))

	for _, c := range candidates {
		state, ok := states[c.EmployeeID]
		if !ok {
			state = domain.NewBanditState(c.EmployeeID, domain.ContextDim, b.cfg.Lambda)
		}
		ucb, err := b.ucb(state, c.Context)
		if err != nil {
			// Cholesky solve failure degrades this arm to cold-start for
			// this decision only (§7 "Numerical errors") — never surfaced.
			log.Printf("[bandit] solve failed for arm %s, treating as cold-start: %v", c.EmployeeID, err)
			ucb = b.coldStartUCB(c.Context)
		}
		scoredArms = append(scoredArms, scored{Candidate: c, ucb: ucb})
	}

	sort.SliceStable(scoredArms, func(i, j int) bool {
		a, c := scoredArms[i], scoredArms[j]
		if a.ucb != c.ucb {
			return a.ucb > c.ucb
		}
		if a.ProductivityScore != c.ProductivityScore {
			return a.ProductivityScore > c.ProductivityScore
		}
		if a.Workload != c.Workload {
			return a.Workload < c.Workload
		}
		return a.EmployeeID < c.EmployeeID
	})

	return scoredArms[0].EmployeeID, nil
}

// Score returns the UCB value for a single arm without picking a
// winner, for preview/ranking use (§6 `recommend`). A nil state is
// treated as cold-start, same as a missing entry in Select's states
// map.
func (b *Bandit) Score(state *domain.BanditState, x domain.Vector) float64 {
	if state == nil {
		return b.coldStartUCB(x)
	}
	ucb, err := b.ucb(*state, x)
	if err != nil {
		log.Printf("[bandit] solve failed for arm %s, treating as cold-start: %v", state.ArmID, err)
		return b.coldStartUCB(x)
	}
	return ucb
}

// ucb computes θᵀx + α·√(xᵀA⁻¹x) for one arm via a Cholesky solve of
// Aθ=b and Az=x, never an explicit matrix inverse (§4.4 numerics).
func (b *Bandit) ucb(state domain.BanditState, x domain.Vector) (float64, error) {
	chol, err := cholesky(state.A)
	if err != nil {
		return 0, err
	}

	theta, err := solveCholesky(chol, state.B)
	if err != nil {
		return 0, err
	}

	z, err := solveCholesky(chol, []float64(x))
	if err != nil {
		return 0, err
	}

	var expected, variance float64
	for i := range x {
		expected += theta[i] * x[i]
		variance += x[i] * z[i]
	}
	if variance < 0 {
		variance = 0
	}
	return expected + b.cfg.Alpha*math.Sqrt(variance), nil
}

// coldStartUCB returns the exploration-only score (α/√λ)·‖x‖ for an arm
// whose Cholesky solve failed or that has never been observed — §4.4
// "Cold-start" paragraph.
func (b *Bandit) coldStartUCB(x domain.Vector) float64 {
	return (b.cfg.Alpha / math.Sqrt(b.cfg.Lambda)) * x.Norm()
}

// Update applies the observed (x, reward) pair to arm's state: A += xxᵀ,
// b += reward·x (§4.4 update rule, P7 commutativity). Returns the
// updated state; it does not mutate state in place.
func Update(state domain.BanditState, x domain.Vector, reward float64) domain.BanditState {
	next := domain.CloneBanditState(state)
	d := len(next.B)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			next.A[i][j] += x[i] * x[j]
		}
		next.B[i] += reward * x[i]
	}
	next.UpdateCount++
	return next
}
