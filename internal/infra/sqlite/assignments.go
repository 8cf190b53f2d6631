package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rosterhq/roster/internal/domain"
)

// GetOpenAssignment returns the task's current open assignment, if any
// (nil, nil if the task has none — not an error, since an unassigned
// task is a normal state, not a failure).
func (d *DB) GetOpenAssignment(ctx context.Context, taskID string) (*domain.Assignment, error) {
	row := d.conn(ctx).QueryRowContext(ctx, `
		SELECT id, task_id, employee_id, assigner_id, context_blob, rework_count,
		       notes, assigned_at, completed_at
		FROM assignments WHERE task_id = ? AND completed_at IS NULL`, taskID)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// InsertAssignment writes a new assignment row. The partial unique
// index on (task_id WHERE completed_at IS NULL) turns a concurrent
// double-assign into a constraint violation, which this method
// translates to ErrAlreadyAssigned (I1).
func (d *DB) InsertAssignment(ctx context.Context, a domain.Assignment) error {
	blob, err := json.Marshal(a.Context)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	_, err = d.conn(ctx).ExecContext(ctx, `
		INSERT INTO assignments (id, task_id, employee_id, assigner_id, context_blob,
		                          rework_count, notes, assigned_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		a.ID, a.TaskID, a.AssigneeID, a.AssignerID, blob, a.ReworkCount, a.Notes, a.AssignedAt.Unix())
	if err != nil && isUniqueViolation(err) {
		return domain.ErrAlreadyAssigned
	}
	return err
}

// CompleteAssignment sets completed_at on the task's open assignment
// (I1 "once completed_at is set... immutable").
func (d *DB) CompleteAssignment(ctx context.Context, taskID string, completedAt time.Time) error {
	result, err := d.conn(ctx).ExecContext(ctx,
		`UPDATE assignments SET completed_at = ? WHERE task_id = ? AND completed_at IS NULL`,
		completedAt.Unix(), taskID)
	if err != nil {
		return fmt.Errorf("complete assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyCompleted
	}
	return nil
}

// IncrementRework bumps the open assignment's rework_count (§9
// mark_rework, optional operation).
func (d *DB) IncrementRework(ctx context.Context, taskID string) error {
	result, err := d.conn(ctx).ExecContext(ctx,
		`UPDATE assignments SET rework_count = rework_count + 1 WHERE task_id = ? AND completed_at IS NULL`,
		taskID)
	if err != nil {
		return fmt.Errorf("increment rework: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyAssigned // no open assignment to mark rework on
	}
	return nil
}

func scanAssignment(s scanner) (*domain.Assignment, error) {
	var a domain.Assignment
	var contextBlob []byte
	var assignedAt int64
	var completedAt sql.NullInt64

	err := s.Scan(&a.ID, &a.TaskID, &a.AssigneeID, &a.AssignerID, &contextBlob,
		&a.ReworkCount, &a.Notes, &assignedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(contextBlob, &a.Context); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	a.AssignedAt = time.Unix(assignedAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		a.CompletedAt = &t
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
