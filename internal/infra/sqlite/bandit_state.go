package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rosterhq/roster/internal/domain"
)

// LoadBanditState returns the persisted per-arm model, or nil if arm
// has never been observed (cold-start is the caller's job — §3
// "Bandit state is created lazily on first observation").
func (d *DB) LoadBanditState(ctx context.Context, arm string) (*domain.BanditState, error) {
	row := d.conn(ctx).QueryRowContext(ctx,
		`SELECT arm_id, a_blob, b_blob, update_count FROM bandit_state WHERE arm_id = ?`, arm)

	var s domain.BanditState
	var aBlob, bBlob []byte
	err := row.Scan(&s.ArmID, &aBlob, &bBlob, &s.UpdateCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan bandit state: %w", err)
	}
	if err := json.Unmarshal(aBlob, &s.A); err != nil {
		return nil, fmt.Errorf("decode A: %w", err)
	}
	if err := json.Unmarshal(bBlob, &s.B); err != nil {
		return nil, fmt.Errorf("decode b: %w", err)
	}
	return &s, nil
}

// SaveBanditState upserts arm's (A, b, update_count) as a single row
// write, so a single arm's state updates atomically (§4.4 Persistence,
// §9 "Stored ML state").
func (d *DB) SaveBanditState(ctx context.Context, s domain.BanditState) error {
	aBlob, err := json.Marshal(s.A)
	if err != nil {
		return fmt.Errorf("encode A: %w", err)
	}
	bBlob, err := json.Marshal(s.B)
	if err != nil {
		return fmt.Errorf("encode b: %w", err)
	}
	_, err = d.conn(ctx).ExecContext(ctx, `
		INSERT INTO bandit_state (arm_id, a_blob, b_blob, update_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(arm_id) DO UPDATE SET
			a_blob = excluded.a_blob,
			b_blob = excluded.b_blob,
			update_count = excluded.update_count`,
		s.ArmID, aBlob, bBlob, s.UpdateCount)
	return err
}

// CountBanditArms returns how many arms have persisted state. Used by
// the health checker as a coarse learning-progress signal, not part of
// domain.Store.
func (d *DB) CountBanditArms(ctx context.Context) (int, error) {
	var n int
	err := d.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM bandit_state`).Scan(&n)
	return n, err
}
