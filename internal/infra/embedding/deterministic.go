// Package embedding provides domain.EmbeddingProvider implementations
// (§4.1.1): a dependency-free deterministic embedder for tests and
// offline use, and a caching wrapper that degrades gracefully on
// timeout (§4.1, §5).
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"github.com/rosterhq/roster/internal/domain"
)

// DeterministicProvider maps a skill name to a unit-norm vector derived
// from its SHA-256 hash, so the same name always yields the same
// vector without calling out to a real model server. Grounded on the
// teacher's MockModelHandle.Embed, which stands behind the same
// interface for testing purposes.
type DeterministicProvider struct {
	dim int
}

// NewDeterministicProvider returns a provider producing vectors of
// length dim (§4.1 "D is a configuration constant").
func NewDeterministicProvider(dim int) *DeterministicProvider {
	if dim <= 0 {
		dim = 1536
	}
	return &DeterministicProvider{dim: dim}
}

// Embed returns one deterministic unit-norm vector per skill name.
func (p *DeterministicProvider) Embed(_ context.Context, skills []string) ([]domain.Vector, error) {
	out := make([]domain.Vector, len(skills))
	for i, name := range skills {
		out[i] = p.vectorFor(name)
	}
	return out, nil
}

func (p *DeterministicProvider) vectorFor(name string) domain.Vector {
	sum := sha256.Sum256([]byte(name))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	v := make(domain.Vector, p.dim)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v.Normalized()
}
