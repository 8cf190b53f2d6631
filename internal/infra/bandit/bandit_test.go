package bandit

import (
	"math"
	"testing"

	"github.com/rosterhq/roster/internal/domain"
)

func TestSelect_ColdStartPrefersLargerNorm(t *testing.T) {
	b := New(DefaultConfig())

	candidates := []Candidate{
		{EmployeeID: "e1", Context: domain.Vector{1, 0, 0, 0, 0, 0, 0, 0}},
		{EmployeeID: "e2", Context: domain.Vector{0.1, 0, 0, 0, 0, 0, 0, 0}},
	}

	winner, err := b.Select(candidates, map[string]domain.BanditState{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if winner != "e1" {
		t.Fatalf("winner = %q, want e1 (larger-norm context wins cold-start exploration)", winner)
	}
}

func TestSelect_TieBreakByProductivityThenWorkloadThenID(t *testing.T) {
	b := New(DefaultConfig())
	ctx := domain.Vector{0, 0, 0, 0, 0, 0, 0, 0}

	candidates := []Candidate{
		{EmployeeID: "b", Context: ctx, ProductivityScore: 0.5, Workload: 1},
		{EmployeeID: "a", Context: ctx, ProductivityScore: 0.5, Workload: 1},
		{EmployeeID: "c", Context: ctx, ProductivityScore: 0.9, Workload: 5},
	}

	winner, err := b.Select(candidates, map[string]domain.BanditState{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if winner != "c" {
		t.Fatalf("winner = %q, want c (highest productivity)", winner)
	}

	candidates = candidates[:2] // b and a tie on everything but id
	winner, err = b.Select(candidates, map[string]domain.BanditState{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if winner != "a" {
		t.Fatalf("winner = %q, want a (lexicographically smaller id)", winner)
	}
}

func TestUpdate_Commutativity(t *testing.T) {
	// P7: applying updates in either order must yield the same (A, b).
	state := domain.NewBanditState("e1", 3, 1.0)

	x1 := domain.Vector{1, 0, 0}
	x2 := domain.Vector{0, 1, 0}

	order1 := Update(Update(state, x1, 1.0), x2, -0.5)
	order2 := Update(Update(state, x2, -0.5), x1, 1.0)

	for i := range order1.A {
		for j := range order1.A[i] {
			if order1.A[i][j] != order2.A[i][j] {
				t.Fatalf("A[%d][%d] differs by order: %v vs %v", i, j, order1.A[i][j], order2.A[i][j])
			}
		}
	}
	for i := range order1.B {
		if order1.B[i] != order2.B[i] {
			t.Fatalf("B[%d] differs by order: %v vs %v", i, order1.B[i], order2.B[i])
		}
	}
}

func TestUpdate_MatchesClosedForm(t *testing.T) {
	// P7: final (A,b) = (λI + Σxᵢxᵢᵀ, Σrᵢxᵢ).
	state := domain.NewBanditState("e1", 2, 1.0)

	updates := []struct {
		x domain.Vector
		r float64
	}{
		{domain.Vector{1, 2}, 0.5},
		{domain.Vector{3, 1}, -1.0},
		{domain.Vector{0, 2}, 2.0},
	}

	got := state
	for _, u := range updates {
		got = Update(got, u.x, u.r)
	}

	wantA := [][]float64{{1, 0}, {0, 1}}
	wantB := []float64{0, 0}
	for _, u := range updates {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				wantA[i][j] += u.x[i] * u.x[j]
			}
			wantB[i] += u.r * u.x[i]
		}
	}

	for i := range wantA {
		for j := range wantA[i] {
			if math.Abs(got.A[i][j]-wantA[i][j]) > 1e-9 {
				t.Fatalf("A[%d][%d] = %v, want %v", i, j, got.A[i][j], wantA[i][j])
			}
		}
	}
	for i := range wantB {
		if math.Abs(got.B[i]-wantB[i]) > 1e-9 {
			t.Fatalf("B[%d] = %v, want %v", i, got.B[i], wantB[i])
		}
	}
	if got.UpdateCount != 3 {
		t.Fatalf("UpdateCount = %d, want 3", got.UpdateCount)
	}
}

func TestCholesky_SolveRecoversIdentity(t *testing.T) {
	a := [][]float64{{1, 0}, {0, 1}}
	l, err := cholesky(a)
	if err != nil {
		t.Fatalf("cholesky: %v", err)
	}
	x, err := solveCholesky(l, []float64{3, 4})
	if err != nil {
		t.Fatalf("solveCholesky: %v", err)
	}
	if math.Abs(x[0]-3) > 1e-9 || math.Abs(x[1]-4) > 1e-9 {
		t.Fatalf("x = %v, want [3 4]", x)
	}
}

func TestCholesky_RejectsNonPositiveDefinite(t *testing.T) {
	a := [][]float64{{1, 2}, {2, 1}} // not PD: eigenvalues are -1 and 3
	if _, err := cholesky(a); err == nil {
		t.Fatalf("cholesky: expected error for non-PD matrix")
	}
}
