package embedding

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/infra/healing"
	"github.com/rosterhq/roster/internal/infra/metrics"
)

// CachingProvider wraps a domain.EmbeddingProvider with an in-memory
// cache keyed by skill name and a circuit breaker guarding the
// underlying call (§5 "Embedding Provider calls carry a bounded
// timeout... on timeout the Similarity Filter falls back"). On a
// breaker trip or context deadline, previously cached vectors are
// served and uncached names degrade to the zero vector rather than
// failing the caller (§4.1 "Failure of the remote provider is
// non-fatal").
type CachingProvider struct {
	inner   domain.EmbeddingProvider
	dim     int
	timeout time.Duration
	breaker *healing.CircuitBreaker

	mu    sync.RWMutex
	cache map[string]domain.Vector
}

// NewCachingProvider wraps inner with a cache and a 5s default timeout
// (§5's suggested bound). dim is the configured embedding dimension D,
// used to size the zero-vector fallback.
func NewCachingProvider(inner domain.EmbeddingProvider, dim int) *CachingProvider {
	return &CachingProvider{
		inner:   inner,
		dim:     dim,
		timeout: 5 * time.Second,
		breaker: healing.NewCircuitBreaker(healing.DefaultCircuitBreakerConfig()),
		cache:   make(map[string]domain.Vector),
	}
}

// Embed returns cached vectors where available; for the remainder it
// calls inner under the breaker and a bounded timeout, degrading any
// name it cannot resolve to a zero vector instead of failing the batch.
func (p *CachingProvider) Embed(ctx context.Context, skills []string) ([]domain.Vector, error) {
	out := make([]domain.Vector, len(skills))
	missing := make([]string, 0, len(skills))
	missingIdx := make([]int, 0, len(skills))

	p.mu.RLock()
	for i, name := range skills {
		if v, ok := p.cache[name]; ok {
			out[i] = v
		} else {
			missing = append(missing, name)
			missingIdx = append(missingIdx, i)
		}
	}
	p.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	if err := p.breaker.Allow(); err != nil {
		log.Printf("[embedding] circuit open, degrading %d skill(s) to zero vector: %v", len(missing), err)
		metrics.EmbeddingDegradations.Add(float64(len(missing)))
		p.fillZero(out, missingIdx)
		return out, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	vecs, err := p.inner.Embed(callCtx, missing)
	if err != nil {
		p.breaker.RecordFailure()
		log.Printf("[embedding] provider call failed, degrading %d skill(s) to zero vector: %v", len(missing), err)
		metrics.EmbeddingDegradations.Add(float64(len(missing)))
		p.fillZero(out, missingIdx)
		return out, nil
	}
	p.breaker.RecordSuccess()

	p.mu.Lock()
	for i, name := range missing {
		out[missingIdx[i]] = vecs[i]
		p.cache[name] = vecs[i]
	}
	p.mu.Unlock()

	return out, nil
}

func (p *CachingProvider) fillZero(out []domain.Vector, idx []int) {
	for _, i := range idx {
		out[i] = make(domain.Vector, p.dim)
	}
}
