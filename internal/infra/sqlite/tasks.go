package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rosterhq/roster/internal/domain"
)

// GetTask retrieves a single task by id.
func (d *DB) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := d.conn(ctx).QueryRowContext(ctx, `
		SELECT id, title, description, priority, difficulty, required_skills_json,
		       embeddings_blob, status, creator_id, assignee_id, due_date, created_at, updated_at
		FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// SaveTaskEmbeddings persists a regenerated required-skill embedding
// cache (§9 "Embedding cache").
func (d *DB) SaveTaskEmbeddings(ctx context.Context, id string, embeddings []domain.Vector) error {
	blob, err := json.Marshal(embeddings)
	if err != nil {
		return fmt.Errorf("encode embeddings: %w", err)
	}
	_, err = d.conn(ctx).ExecContext(ctx,
		`UPDATE tasks SET embeddings_blob = ?, updated_at = ? WHERE id = ?`,
		blob, time.Now().Unix(), id)
	return err
}

// SetTaskStatus updates a task's lifecycle status (I7).
func (d *DB) SetTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	result, err := d.conn(ctx).ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUnknownTask
	}
	return nil
}

// SetTaskAssignee records the winning employee id on the task row,
// alongside the authoritative assignment row (denormalized for cheap
// reads; the assignments table remains the source of truth for I1).
func (d *DB) SetTaskAssignee(ctx context.Context, id, employeeID string) error {
	_, err := d.conn(ctx).ExecContext(ctx,
		`UPDATE tasks SET assignee_id = ?, updated_at = ? WHERE id = ?`,
		employeeID, time.Now().Unix(), id)
	return err
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var requiredSkillsJSON string
	var embeddingsBlob []byte
	var assigneeID sql.NullString
	var dueDate sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Difficulty, &requiredSkillsJSON,
		&embeddingsBlob, &t.Status, &t.CreatorID, &assigneeID, &dueDate, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUnknownTask
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if err := json.Unmarshal([]byte(requiredSkillsJSON), &t.RequiredSkills); err != nil {
		return nil, fmt.Errorf("decode required skills: %w", err)
	}
	if len(embeddingsBlob) > 0 {
		if err := json.Unmarshal(embeddingsBlob, &t.SkillEmbeddings); err != nil {
			return nil, fmt.Errorf("decode embeddings: %w", err)
		}
	}
	if assigneeID.Valid {
		t.AssigneeID = assigneeID.String
	}
	if dueDate.Valid {
		due := time.Unix(dueDate.Int64, 0)
		t.DueDate = &due
	}
	t.CreatedAt = time.Unix(createdAt, 0)
	t.UpdatedAt = time.Unix(updatedAt, 0)
	return &t, nil
}

// InsertTask creates a new task row. Project/task CRUD is a Non-goal of
// the core (§1), but the CLI and tests need a concrete way to create
// one ahead of calling AssignTask.
func (d *DB) InsertTask(ctx context.Context, t domain.Task) error {
	requiredSkillsJSON, err := json.Marshal(t.RequiredSkills)
	if err != nil {
		return fmt.Errorf("encode required skills: %w", err)
	}
	var embeddingsBlob []byte
	if len(t.SkillEmbeddings) > 0 {
		embeddingsBlob, err = json.Marshal(t.SkillEmbeddings)
		if err != nil {
			return fmt.Errorf("encode embeddings: %w", err)
		}
	}
	var dueDate sql.NullInt64
	if t.DueDate != nil {
		dueDate = sql.NullInt64{Int64: t.DueDate.Unix(), Valid: true}
	}

	now := time.Now().Unix()
	status := t.Status
	if status == "" {
		status = domain.TaskTodo
	}
	_, err = d.conn(ctx).ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, priority, difficulty, required_skills_json,
		                    embeddings_blob, status, creator_id, assignee_id, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Priority, t.Difficulty, requiredSkillsJSON,
		embeddingsBlob, string(status), t.CreatorID, t.AssigneeID, dueDate, now, now)
	return err
}
