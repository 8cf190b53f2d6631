package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Input errors — caller's fault, surfaced verbatim, no retry.
	ErrUnknownTask         = errors.New("task not found")
	ErrUnknownEmployee     = errors.New("employee not found")
	ErrInvalidManualTarget = errors.New("manual target is not an active employee")
	ErrAlreadyAssigned     = errors.New("task already has an open assignment")
	ErrAlreadyCompleted    = errors.New("task already has a feedback row")
	ErrNoCandidates        = errors.New("no active employees available")

	// Invariant violations — bugs, fail-fast, treat as 5xx.
	ErrInvariantViolated = errors.New("invariant violated")

	// Storage — persistent failure after retry.
	ErrInternal = errors.New("internal storage error")

	// Intake queue — batch processing of unassigned tasks (§5.1 scale note).
	ErrIntakeQueueSaturated    = errors.New("intake queue saturated, reject all")
	ErrIntakeQueueBackPressure = errors.New("intake queue under pressure, low-priority task rejected")
)
