package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ChangeRepo reads and acknowledges rows of the record_changes log.
// Rows are written by the records triggers, never by Go code.
type ChangeRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewChangeRepo creates a new ChangeRepo.
func NewChangeRepo(db *sql.DB) *ChangeRepo {
	return &ChangeRepo{db: db, now: time.Now}
}

// Claim leases up to limit unclaimed changes, oldest first. Changes whose lease is older
// than lease are handed out again so a crashed worker's backlog is not lost.
func (r *ChangeRepo) Claim(ctx context.Context, limit int, lease time.Duration) ([]Change, error) {
	now := r.now()
	expired := now.Add(-lease).UnixNano()

	rows, err := r.db.QueryContext(ctx,
		`UPDATE record_changes SET claimed_at = ?
		 WHERE seq IN (
			SELECT seq FROM record_changes
			WHERE claimed_at IS NULL OR claimed_at < ?
			ORDER BY seq LIMIT ?
		 )
		 RETURNING seq, op, tenant_id, user_id, record_id, before_json, after_json, created_at`,
		now.UnixNano(), expired, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim changes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var changes []Change
	for rows.Next() {
		var (
			c             Change
			before, after sql.NullString
			created       string
		)
		if err := rows.Scan(&c.Seq, &c.Op, &c.Key.TenantID, &c.Key.UserID, &c.Key.RecordID,
			&before, &after, &created); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		if before.Valid {
			c.Before = []byte(before.String)
		}
		if after.Valid {
			c.After = []byte(after.String)
		}
		if c.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate changes: %w", err)
	}

	// RETURNING does not guarantee order.
	sort.Slice(changes, func(i, j int) bool { return changes[i].Seq < changes[j].Seq })

	return changes, nil
}

// Complete removes handled changes from the log.
func (r *ChangeRepo) Complete(ctx context.Context, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}

	args := make([]any, len(seqs))
	for i, s := range seqs {
		args[i] = s
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seqs)), ",")

	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM record_changes WHERE seq IN ("+placeholders+")", args...,
	); err != nil {
		return fmt.Errorf("failed to complete changes: %w", err)
	}
	return nil
}

// Pending returns the number of changes not yet completed, claimed or not.
func (r *ChangeRepo) Pending(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM record_changes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count changes: %w", err)
	}
	return n, nil
}
