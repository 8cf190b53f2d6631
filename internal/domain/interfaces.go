package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// EmbeddingProvider maps skill names to unit-norm vectors of length D
// (§4.1). Implementations MUST accept batched input and MUST return
// L2-normalized vectors. A non-nil error means the whole batch failed;
// callers degrade gracefully rather than fail the caller's operation.
type EmbeddingProvider interface {
	Embed(ctx context.Context, skills []string) ([]Vector, error)
}

// Store abstracts persistent storage for tasks, employees, assignments,
// feedback, and bandit state (§6 persistence layout). A single
// implementation (internal/infra/sqlite) backs it in production; tests
// may use an in-memory fake.
type Store interface {
	// Employees.
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListActiveEmployees(ctx context.Context) ([]Employee, error)
	SaveEmployeeEmbeddings(ctx context.Context, id string, embeddings []Vector) error
	AdjustWorkload(ctx context.Context, id string, delta int) error

	// Tasks.
	GetTask(ctx context.Context, id string) (*Task, error)
	SaveTaskEmbeddings(ctx context.Context, id string, embeddings []Vector) error
	SetTaskStatus(ctx context.Context, id string, status TaskStatus) error
	SetTaskAssignee(ctx context.Context, id, employeeID string) error

	// Assignments.
	GetOpenAssignment(ctx context.Context, taskID string) (*Assignment, error)
	InsertAssignment(ctx context.Context, a Assignment) error
	CompleteAssignment(ctx context.Context, taskID string, completedAt time.Time) error
	IncrementRework(ctx context.Context, taskID string) error

	// Feedback.
	HasFeedback(ctx context.Context, taskID string) (bool, error)
	InsertFeedback(ctx context.Context, f Feedback) error

	// Bandit state.
	LoadBanditState(ctx context.Context, arm string) (*BanditState, error)
	SaveBanditState(ctx context.Context, s BanditState) error

	// WithTx runs fn inside a single storage transaction. Nested calls
	// to WithTx are not supported — callers group the §4.5/§4.7
	// multi-step effects into exactly one WithTx per operation, which
	// is how assign/complete satisfy "atomic as a group" (§5).
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
