// Package similarity implements the Skill Similarity Filter (§4.2):
// narrowing a candidate pool to the top-K employees by mean-pairwise
// cosine similarity between task-skill and employee-skill embeddings.
package similarity

import (
	"context"
	"log"
	"sort"

	"github.com/rosterhq/roster/internal/domain"
)

// DefaultK is the default top-K cutoff (§4.2).
const DefaultK = 3

// Filter narrows a candidate pool by mean-pairwise skill-embedding
// cosine similarity. It never blocks assignment: any internal failure
// degrades to returning the candidate set unchanged (§4.2 "Failure
// semantics").
type Filter struct {
	provider domain.EmbeddingProvider
	k        int
}

// New returns a Filter that falls back to provider to fill embedding
// cache misses, keeping the top k candidates (k <= 0 uses DefaultK).
func New(provider domain.EmbeddingProvider, k int) *Filter {
	if k <= 0 {
		k = DefaultK
	}
	return &Filter{provider: provider, k: k}
}

// Scored is one candidate's similarity score, retained so the Feature
// Extractor (§4.3, x₅) can reuse it without recomputing.
type Scored struct {
	Employee   domain.Employee
	Similarity float64
}

// TopK implements §4.2 steps 1-5. task.SkillEmbeddings is read as
// given: the caller fills in missing task embeddings (Engine.AssignTask
// does so before calling TopK), and a task with no embeddings gets the
// pool back unfiltered.
func (f *Filter) TopK(ctx context.Context, task domain.Task, pool []domain.Employee) (result []Scored) {
	defer func() {
		// Catastrophic failure must never block assignment (§4.2).
		if r := recover(); r != nil {
			log.Printf("[similarity] recovered from panic, degrading to unfiltered pool: %v", r)
			result = identity(pool)
		}
	}()

	if len(task.SkillEmbeddings) == 0 {
		return identity(pool)
	}

	anyHasSkills := false
	for _, e := range pool {
		if len(e.Skills) > 0 {
			anyHasSkills = true
			break
		}
	}
	if !anyHasSkills {
		return identity(pool)
	}

	scored := make([]Scored, len(pool))
	for i, e := range pool {
		scored[i] = Scored{Employee: e, Similarity: f.similarity(ctx, task, e)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Employee.ProductivityScore != b.Employee.ProductivityScore {
			return a.Employee.ProductivityScore > b.Employee.ProductivityScore
		}
		if a.Employee.Workload != b.Employee.Workload {
			return a.Employee.Workload < b.Employee.Workload
		}
		return a.Employee.ID < b.Employee.ID
	})

	if len(scored) > f.k {
		scored = scored[:f.k]
	}
	return scored
}

// similarity computes s_j, the mean-pairwise cosine for employee e
// against task (§4.2 step 3), generating embeddings on a cache miss and
// treating provider failure as similarity 0 (§4.2 step 2).
func (f *Filter) similarity(ctx context.Context, task domain.Task, e domain.Employee) float64 {
	embeddings := e.SkillEmbeddings
	if len(embeddings) != len(e.Skills) {
		vecs, err := f.provider.Embed(ctx, e.SkillNames())
		if err != nil {
			log.Printf("[similarity] embedding provider failed for employee %s, similarity=0: %v", e.ID, err)
			return 0
		}
		embeddings = vecs
	}
	if len(embeddings) == 0 {
		return 0
	}

	var sum float64
	pairs := 0
	for _, t := range task.SkillEmbeddings {
		for _, emb := range embeddings {
			if dot := t.Dot(emb); dot > 0 {
				sum += dot
			}
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

func identity(pool []domain.Employee) []Scored {
	out := make([]Scored, len(pool))
	for i, e := range pool {
		out[i] = Scored{Employee: e}
	}
	return out
}
