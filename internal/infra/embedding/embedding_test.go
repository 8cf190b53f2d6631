package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rosterhq/roster/internal/domain"
)

func TestDeterministicProvider_IsDeterministic(t *testing.T) {
	p := NewDeterministicProvider(16)
	ctx := context.Background()

	a, err := p.Embed(ctx, []string{"rust", "go"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := p.Embed(ctx, []string{"rust", "go"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("Embed(%q) not deterministic across calls", []string{"rust", "go"}[i])
			}
		}
	}
}

func TestDeterministicProvider_UnitNorm(t *testing.T) {
	p := NewDeterministicProvider(32)
	vecs, err := p.Embed(context.Background(), []string{"rust"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !vecs[0].IsUnit(1e-9) {
		t.Fatalf("Norm = %v, want ~1.0 (I4)", vecs[0].Norm())
	}
}

func TestDeterministicProvider_DistinctNamesDistinctVectors(t *testing.T) {
	p := NewDeterministicProvider(16)
	vecs, err := p.Embed(context.Background(), []string{"rust", "python"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vecs[0].CosineSimilarity(vecs[1]) > 0.99 {
		t.Fatalf("distinct skill names produced near-identical vectors")
	}
}

type failingProvider struct{ err error }

func (f failingProvider) Embed(context.Context, []string) ([]domain.Vector, error) {
	return nil, f.err
}

func TestCachingProvider_DegradesToZeroOnFailure(t *testing.T) {
	p := NewCachingProvider(failingProvider{err: errors.New("timeout")}, 8)
	vecs, err := p.Embed(context.Background(), []string{"rust"})
	if err != nil {
		t.Fatalf("Embed should never surface the inner failure, got %v", err)
	}
	if vecs[0].Norm() != 0 {
		t.Fatalf("Norm = %v, want 0 (zero-vector degrade)", vecs[0].Norm())
	}
}

func TestCachingProvider_CachesAfterFirstSuccess(t *testing.T) {
	inner := NewDeterministicProvider(8)
	p := NewCachingProvider(inner, 8)

	first, err := p.Embed(context.Background(), []string{"rust"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	// Force the breaker open so a cache miss would degrade to zero;
	// a cache hit must still return the real vector.
	for i := 0; i < 10; i++ {
		p.breaker.RecordFailure()
	}

	second, err := p.Embed(context.Background(), []string{"rust"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if math.Abs(first[0].Norm()-second[0].Norm()) > 1e-9 || second[0].Norm() == 0 {
		t.Fatalf("cached vector should survive a later breaker trip, got norm %v", second[0].Norm())
	}
}
