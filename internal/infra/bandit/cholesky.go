package bandit

import (
	"errors"
	"math"
)

// ErrNotPositiveDefinite is returned when A's Cholesky factor cannot be
// formed — extreme ill-conditioning (§4.4 "If a solve fails...").
var ErrNotPositiveDefinite = errors.New("bandit: matrix is not positive definite")

// cholesky computes the lower-triangular factor L such that A = L Lᵀ,
// for a symmetric positive-definite A. A is never mutated.
func cholesky(a [][]float64) ([][]float64, error) {
	n := len(a)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			var sum float64
			for k := 0; k < j; k++ {
				sum += l[i][k] * l[j][k]
			}
			if i == j {
				diag := a[i][i] - sum
				if diag <= 1e-12 {
					return nil, ErrNotPositiveDefinite
				}
				l[i][j] = math.Sqrt(diag)
			} else {
				l[i][j] = (a[i][j] - sum) / l[j][j]
			}
		}
	}
	return l, nil
}

// solveCholesky solves A x = rhs given A's Cholesky factor L (A = L Lᵀ)
// by forward substitution (L y = rhs) then back substitution (Lᵀ x = y).
func solveCholesky(l [][]float64, rhs []float64) ([]float64, error) {
	n := len(l)
	if len(rhs) != n {
		return nil, errors.New("bandit: dimension mismatch")
	}

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := rhs[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * y[k]
		}
		y[i] = sum / l[i][i]
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * x[k]
		}
		x[i] = sum / l[i][i]
	}
	return x, nil
}
