// Package domain holds the pure types and interfaces of the assignment
// and learning engine. A task is a unit of work that flows through the
// system: create → assign → progress → complete → learn.
package domain

import "time"

// TaskStatus tracks task lifecycle (I7).
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// Task is a unit of work awaiting or under assignment.
type Task struct {
	ID          string
	Title       string
	Description string // opaque to the core

	Priority   int // 1..5, higher = more urgent
	Difficulty int // 1..10

	RequiredSkills   []string
	SkillEmbeddings  []Vector // cached, one per RequiredSkills entry, unit norm (I4)

	Status     TaskStatus
	CreatorID  string
	AssigneeID string // "" if unassigned

	DueDate   *time.Time // nil if none
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the task has neither been force-closed nor
// completed — it can still be assigned or progressed.
func (t *Task) IsOpen() bool {
	return t.Status != TaskDone
}

// HasEmbeddings reports whether every required skill has a cached
// embedding.
func (t *Task) HasEmbeddings() bool {
	return len(t.SkillEmbeddings) == len(t.RequiredSkills) && len(t.RequiredSkills) > 0
}
