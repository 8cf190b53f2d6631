package domain

import "time"

// AssignMode selects how the Assignment Coordinator picks the assignee.
type AssignMode string

const (
	AssignAuto   AssignMode = "auto"
	AssignManual AssignMode = "manual"
)

// Assignment binds a task to an employee. Once CompletedAt is set it is
// immutable (I1).
type Assignment struct {
	ID         string
	TaskID     string
	AssigneeID string
	AssignerID string

	// Context is the feature vector the Bandit consumed to select
	// AssigneeID (for auto mode) — authoritative for learning (I5).
	// For manual assignments it is still populated (the Feature
	// Extractor always runs) so Recommend/audit views stay consistent,
	// but the Bandit never saw it.
	Context Vector

	// ReworkCount is incremented by the optional mark_rework operation
	// (§9) before completion, and feeds p_rework in the Reward
	// Calculator.
	ReworkCount int

	Notes string // opaque, e.g. a manual-override rationale

	AssignedAt  time.Time
	CompletedAt *time.Time // nil while open
}

// IsOpen reports whether the assignment has not yet been completed.
func (a *Assignment) IsOpen() bool {
	return a.CompletedAt == nil
}
