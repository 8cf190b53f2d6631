package domain

import "time"

// Skill is a single named competency an employee holds, with optional
// tenure metadata used by the feature extractor (§4.3, x7/x8).
type Skill struct {
	Name             string
	ExperienceMonths int // months of hands-on experience with this skill, 0 if unknown
	TenureMonths     int // months since the employee first listed this skill, 0 if unknown
}

// Employee is a candidate for task assignment.
type Employee struct {
	ID    string
	Name  string
	Email string // opaque to the core, display only
	Title string // opaque to the core, display only

	Skills []Skill
	// SkillEmbeddings holds one unit-norm vector per entry in Skills, in
	// the same order. Cached — regenerated only when Skills changes
	// (§9 "Embedding cache").
	SkillEmbeddings []Vector

	ProductivityScore float64 // [0,1]
	Workload          int     // count of open assignments (I3)
	Active            bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SkillNames returns the plain skill name list, used to request
// embeddings from the provider on a cache miss.
func (e Employee) SkillNames() []string {
	names := make([]string, len(e.Skills))
	for i, s := range e.Skills {
		names[i] = s.Name
	}
	return names
}

// HasEmbeddings reports whether every skill has a cached embedding.
func (e Employee) HasEmbeddings() bool {
	return len(e.SkillEmbeddings) == len(e.Skills) && len(e.Skills) > 0
}
