package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rosterhq/roster/internal/domain"
)

type skillRow struct {
	Name             string `json:"name"`
	ExperienceMonths int    `json:"experience_months"`
	TenureMonths     int    `json:"tenure_months"`
}

// GetEmployee retrieves a single employee by id.
func (d *DB) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	row := d.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, email, title, skills_json, embeddings_blob,
		       productivity_score, workload, active, created_at, updated_at
		FROM employees WHERE id = ?`, id)
	return scanEmployee(row)
}

// ListActiveEmployees returns every employee with active=true, the
// candidate pool for auto-assignment (§4.5 step 1).
func (d *DB) ListActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := d.conn(ctx).QueryContext(ctx, `
		SELECT id, name, email, title, skills_json, embeddings_blob,
		       productivity_score, workload, active, created_at, updated_at
		FROM employees WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// SaveEmployeeEmbeddings persists a regenerated skill-embedding cache
// (§9 "Embedding cache").
func (d *DB) SaveEmployeeEmbeddings(ctx context.Context, id string, embeddings []domain.Vector) error {
	blob, err := json.Marshal(embeddings)
	if err != nil {
		return fmt.Errorf("encode embeddings: %w", err)
	}
	_, err = d.conn(ctx).ExecContext(ctx,
		`UPDATE employees SET embeddings_blob = ?, updated_at = ? WHERE id = ?`,
		blob, time.Now().Unix(), id)
	return err
}

// AdjustWorkload applies delta to the employee's workload counter,
// clamped at a floor of 0 (§4.7 step 5 "decrement... floor at 0"; I3).
func (d *DB) AdjustWorkload(ctx context.Context, id string, delta int) error {
	result, err := d.conn(ctx).ExecContext(ctx,
		`UPDATE employees SET workload = MAX(0, workload + ?), updated_at = ? WHERE id = ?`,
		delta, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("adjust workload: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUnknownEmployee
	}
	return nil
}

func scanEmployee(s scanner) (*domain.Employee, error) {
	var e domain.Employee
	var skillsJSON string
	var embeddingsBlob []byte
	var createdAt, updatedAt int64

	err := s.Scan(&e.ID, &e.Name, &e.Email, &e.Title, &skillsJSON, &embeddingsBlob,
		&e.ProductivityScore, &e.Workload, &e.Active, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUnknownEmployee
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee: %w", err)
	}

	var rows []skillRow
	if err := json.Unmarshal([]byte(skillsJSON), &rows); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	e.Skills = make([]domain.Skill, len(rows))
	for i, r := range rows {
		e.Skills[i] = domain.Skill{Name: r.Name, ExperienceMonths: r.ExperienceMonths, TenureMonths: r.TenureMonths}
	}

	if len(embeddingsBlob) > 0 {
		if err := json.Unmarshal(embeddingsBlob, &e.SkillEmbeddings); err != nil {
			return nil, fmt.Errorf("decode embeddings: %w", err)
		}
	}

	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)
	return &e, nil
}

// InsertEmployee creates a new employee row. Not part of domain.Store —
// employee creation is out of the core's Non-goals (catalog CRUD), but
// the CLI and tests need a concrete way to seed data.
func (d *DB) InsertEmployee(ctx context.Context, e domain.Employee) error {
	rows := make([]skillRow, len(e.Skills))
	for i, s := range e.Skills {
		rows[i] = skillRow{Name: s.Name, ExperienceMonths: s.ExperienceMonths, TenureMonths: s.TenureMonths}
	}
	skillsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}
	var embeddingsBlob []byte
	if len(e.SkillEmbeddings) > 0 {
		embeddingsBlob, err = json.Marshal(e.SkillEmbeddings)
		if err != nil {
			return fmt.Errorf("encode embeddings: %w", err)
		}
	}

	now := time.Now().Unix()
	_, err = d.conn(ctx).ExecContext(ctx, `
		INSERT INTO employees (id, name, email, title, skills_json, embeddings_blob,
		                        productivity_score, workload, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Email, e.Title, skillsJSON, embeddingsBlob,
		e.ProductivityScore, e.Workload, e.Active, now, now)
	return err
}
