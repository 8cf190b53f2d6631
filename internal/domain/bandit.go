package domain

// ContextDim is D, the fixed dimension of a context vector (§4.3).
const ContextDim = 8

// BanditState is the per-arm linear model the Contextual Bandit
// maintains, where an arm is an employee id (§4.4, §9 "Stored ML
// state"). A is the D×D ridge matrix, B is the D-dim response vector.
// A single arm's (A, B, UpdateCount) must update together.
type BanditState struct {
	ArmID       string
	A           [][]float64 // D x D, symmetric positive definite
	B           []float64   // D
	UpdateCount int64
}

// CloneBanditState returns a deep copy, so callers can mutate freely
// without aliasing stored state.
func CloneBanditState(s BanditState) BanditState {
	a := make([][]float64, len(s.A))
	for i, row := range s.A {
		a[i] = append([]float64(nil), row...)
	}
	return BanditState{
		ArmID:       s.ArmID,
		A:           a,
		B:           append([]float64(nil), s.B...),
		UpdateCount: s.UpdateCount,
	}
}

// NewBanditState returns a cold-start state for arm: A = lambda*I, B = 0.
func NewBanditState(arm string, dim int, lambda float64) BanditState {
	a := make([][]float64, dim)
	for i := range a {
		a[i] = make([]float64, dim)
		a[i][i] = lambda
	}
	return BanditState{ArmID: arm, A: a, B: make([]float64, dim)}
}
