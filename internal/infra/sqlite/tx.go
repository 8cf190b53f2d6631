package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// txKey stashes the active *sql.Tx in the context so every Store method
// can transparently run inside WithTx without threading a transaction
// argument through every call (§5 "atomic as a group").
type txKey struct{}

// retryDelays implements §7's storage-conflict policy: retried up to 3
// times with exponential backoff 10ms, 40ms, 160ms.
var retryDelays = []time.Duration{10 * time.Millisecond, 40 * time.Millisecond, 160 * time.Millisecond}

// WithTx runs fn inside a single SQLite transaction, retrying on
// transient "database is locked"/"busy" conflicts per §7. Nested calls
// are not supported: fn receives ctx already carrying the transaction,
// so calling WithTx again inside fn would open a second, unrelated
// transaction on the same single-connection pool and deadlock — callers
// must call WithTx exactly once per assign/complete operation.
func (d *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		if attempt > 0 {
			log.Printf("[sqlite] retrying transaction after conflict (attempt %d): %v", attempt, lastErr)
			time.Sleep(retryDelays[attempt-1])
		}

		err := d.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("storage conflict after %d attempts: %w", len(retryDelays)+1, lastErr)
}

func (d *DB) runTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err = fn(txCtx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isRetryable reports whether err is a transient SQLite busy/locked
// conflict (or sql.ErrTxDone) rather than an application-level failure. modernc.org/sqlite
// surfaces these as plain string-matched driver errors rather than a
// typed sentinel, so this is a substring check, same as the teacher's
// own plain-string error handling elsewhere in the repo.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy") ||
		errors.Is(err, sql.ErrTxDone)
}
