package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rosterhq/roster/internal/domain"
)

// HasFeedback reports whether a feedback row already exists for taskID
// (I2, §4.7 precondition "no existing feedback row").
func (d *DB) HasFeedback(ctx context.Context, taskID string) (bool, error) {
	var count int
	err := d.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback WHERE task_id = ?`, taskID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check feedback: %w", err)
	}
	return count > 0, nil
}

// InsertFeedback writes the feedback row for a completed task. The
// UNIQUE constraint on task_id turns a racing duplicate completion into
// a constraint violation, which this method translates to
// ErrAlreadyCompleted (§4.7 "fails if one already exists").
func (d *DB) InsertFeedback(ctx context.Context, f domain.Feedback) error {
	blob, err := json.Marshal(f.Context)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	_, err = d.conn(ctx).ExecContext(ctx, `
		INSERT INTO feedback (id, task_id, employee_id, r_completion, r_ontime, r_good_behaviour,
		                       p_overdue, p_rework, p_failure, raw_reward, reward_value,
		                       overdue_days, context_blob, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.TaskID, f.EmployeeID, f.RCompletion, f.ROntime, f.RGoodBehaviour,
		f.POverdue, f.PRework, f.PFailure, f.RawReward, f.RewardValue,
		f.OverdueDays, blob, f.CreatedAt.Unix())
	if err != nil && isUniqueViolation(err) {
		return domain.ErrAlreadyCompleted
	}
	return err
}

// GetFeedback retrieves the feedback row for a task, if any. Not part
// of domain.Store; neither the engine nor the CLI calls it.
func (d *DB) GetFeedback(ctx context.Context, taskID string) (*domain.Feedback, error) {
	row := d.conn(ctx).QueryRowContext(ctx, `
		SELECT id, task_id, employee_id, r_completion, r_ontime, r_good_behaviour,
		       p_overdue, p_rework, p_failure, raw_reward, reward_value,
		       overdue_days, context_blob, created_at
		FROM feedback WHERE task_id = ?`, taskID)

	var f domain.Feedback
	var contextBlob []byte
	var createdAt int64
	err := row.Scan(&f.ID, &f.TaskID, &f.EmployeeID, &f.RCompletion, &f.ROntime, &f.RGoodBehaviour,
		&f.POverdue, &f.PRework, &f.PFailure, &f.RawReward, &f.RewardValue,
		&f.OverdueDays, &contextBlob, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	if err := json.Unmarshal(contextBlob, &f.Context); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	f.CreatedAt = time.Unix(createdAt, 0)
	return &f, nil
}
