// Package feature builds the 8-dimensional context vector the Bandit
// consumes for a (task, employee) pair (§4.3).
package feature

import (
	"strings"

	"github.com/rosterhq/roster/internal/domain"
)

// WMax caps workload for x₂'s normalization (§4.3).
const WMax = 10

// HorizonHours is the urgency lookahead window for x₆ (§4.3, H=72).
const HorizonHours = 72

// TenureCapMonths bounds the experience/tenure normalization in x₇/x₈.
const TenureCapMonths = 60

// Extractor builds context vectors. It is stateless; the same Extractor
// instance must be used at selection time and at learning time (§4.3
// "The exact same extractor MUST be used...").
type Extractor struct {
	clock domain.Clock
}

// New returns an Extractor that reads "now" from clock for urgency (x₆).
func New(clock domain.Clock) *Extractor {
	return &Extractor{clock: clock}
}

// Extract builds x for task and employee. similarity is the candidate's
// mean-pairwise cosine score already computed by the Similarity Filter
// (§4.2) and reused here for x₅, so it is never recomputed and can never
// drift from the value the filter ranked on.
func (e *Extractor) Extract(task domain.Task, employee domain.Employee, similarity float64) domain.Vector {
	x := make(domain.Vector, domain.ContextDim)

	x[0] = clamp01(employee.ProductivityScore)
	x[1] = 1 - float64(min(max(employee.Workload, 0), WMax))/WMax
	x[2] = clamp01(float64(task.Priority-1) / 4)
	x[3] = clamp01(float64(task.Difficulty-1) / 9)
	x[4] = clamp01(similarity)
	x[5] = e.urgency(task)
	x[6], x[7] = e.experienceTenure(task, employee)

	return x
}

// urgency computes x₆: 1 if overdue or ≤0 hours remain, 0 if ≥H hours
// remain, linear in between.
func (e *Extractor) urgency(task domain.Task) float64 {
	if task.DueDate == nil {
		return 0
	}
	now := e.clock.Now()
	hoursUntilDue := task.DueDate.Sub(now).Hours()
	return clamp01((HorizonHours - hoursUntilDue) / HorizonHours)
}

// experienceTenure computes x₇ and x₈: mean normalized experience/tenure
// across the employee's skills that match a required skill, 0 if there
// is no overlap.
func (e *Extractor) experienceTenure(task domain.Task, employee domain.Employee) (float64, float64) {
	required := make(map[string]bool, len(task.RequiredSkills))
	for _, s := range task.RequiredSkills {
		required[strings.ToLower(s)] = true
	}

	var expSum, tenSum float64
	var matches int
	for _, s := range employee.Skills {
		if !required[strings.ToLower(s.Name)] {
			continue
		}
		expSum += clamp01(float64(s.ExperienceMonths) / TenureCapMonths)
		tenSum += clamp01(float64(s.TenureMonths) / TenureCapMonths)
		matches++
	}
	if matches == 0 {
		return 0, 0
	}
	return expSum / float64(matches), tenSum / float64(matches)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
