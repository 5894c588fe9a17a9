package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_record_store.go -package=mocks notesync/internal/storage RecordStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional status write matched no row:
	// another embedding attempt is in flight or the caller's view of the text is stale.
	ErrConflict = errors.New("record changed or embedding already in progress")
	// ErrInvalidRecord is returned when a record fails validation on write.
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordStore defines the interface for content record storage operations.
type RecordStore interface {
	// Get returns the record for key, or ErrNotFound.
	Get(ctx context.Context, key Key) (*Record, error)
	// Upsert inserts or replaces the content of a record. Embedding state is preserved.
	Upsert(ctx context.Context, rec *Record) (*Record, error)
	// Delete removes a record. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key Key) error
	// ClaimForEmbedding moves the record to processing if its text still equals text and,
	// unless force is set, no other attempt is in flight. Returns ErrConflict or ErrNotFound otherwise.
	ClaimForEmbedding(ctx context.Context, key Key, text string, force bool) error
	// MarkCompleted records a successful embedding of text at the given time. Returns
	// ErrConflict when the stored text is no longer text.
	MarkCompleted(ctx context.Context, key Key, text string, at time.Time) error
	// MarkFailed records a failed embedding of text with a short diagnostic. Returns
	// ErrConflict when the stored text is no longer text.
	MarkFailed(ctx context.Context, key Key, text, diagnostic string) error
	// ReleaseClaim returns a processing record to idle so the change feed picks it up again.
	ReleaseClaim(ctx context.Context, key Key) error
	// CountByStatus returns the number of records per embedding status.
	CountByStatus(ctx context.Context) (map[EmbeddingStatus]int, error)
	// ListKeysByStatus returns up to limit record keys with the given status.
	ListKeysByStatus(ctx context.Context, status EmbeddingStatus, limit int) ([]Key, error)
}

// RecordRepo provides methods for content record operations.
// It implements the RecordStore interface.
type RecordRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewRecordRepo creates a new RecordRepo.
func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db, now: time.Now}
}

const recordColumns = `tenant_id, user_id, record_id, record_type, title, text, format,
	file_name, file_size, mime_type, embedding_status, embedding_error,
	embedding_last_updated, created_at, updated_at`

// Get returns the record for key, or ErrNotFound.
func (r *RecordRepo) Get(ctx context.Context, key Key) (*Record, error) {
	var (
		rec                             Record
		recType, format, status         string
		lastUpdated, created, updatedAt string
	)

	err := r.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE tenant_id = ? AND user_id = ? AND record_id = ?",
		key.TenantID, key.UserID, key.RecordID,
	).Scan(&rec.TenantID, &rec.UserID, &rec.RecordID, &recType, &rec.Title, &rec.Text, &format,
		&rec.FileName, &rec.FileSize, &rec.MimeType, &status, &rec.EmbeddingError,
		&lastUpdated, &created, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}

	rec.Type = RecordType(recType)
	rec.Format = Format(format)
	rec.EmbeddingStatus = EmbeddingStatus(status)
	if rec.EmbeddingLastUpdated, err = parseTimestamp(lastUpdated); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}

	return &rec, nil
}

// Upsert inserts a new record or replaces the content of an existing one.
// The embedding fields are left to the embedding engine; a new record starts idle.
// Format defaults to html for notes and text for files.
func (r *RecordRepo) Upsert(ctx context.Context, rec *Record) (*Record, error) {
	if err := rec.Key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if !rec.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown record type %q", ErrInvalidRecord, rec.Type)
	}
	format := rec.Format
	if format == "" {
		format = FormatHTML
		if rec.Type == RecordTypeFile {
			format = FormatText
		}
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidRecord, format)
	}

	now := formatTimestamp(r.now())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (tenant_id, user_id, record_id, record_type, title, text, format,
			file_name, file_size, mime_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, user_id, record_id) DO UPDATE SET
			record_type = excluded.record_type, title = excluded.title, text = excluded.text,
			format = excluded.format, file_name = excluded.file_name, file_size = excluded.file_size,
			mime_type = excluded.mime_type, updated_at = excluded.updated_at`,
		rec.TenantID, rec.UserID, rec.RecordID, string(rec.Type), rec.Title, rec.Text, string(format),
		rec.FileName, rec.FileSize, rec.MimeType, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert record: %w", err)
	}

	return r.Get(ctx, rec.Key)
}

// Delete removes a record. Returns ErrNotFound if it does not exist.
func (r *RecordRepo) Delete(ctx context.Context, key Key) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM records WHERE tenant_id = ? AND user_id = ? AND record_id = ?",
		key.TenantID, key.UserID, key.RecordID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return requireRow(res)
}

// ClaimForEmbedding is the per-record compare-and-swap that guards the processing state.
// The text comparison drops events that no longer describe the stored record.
func (r *RecordRepo) ClaimForEmbedding(ctx context.Context, key Key, text string, force bool) error {
	forceFlag := 0
	if force {
		forceFlag = 1
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET embedding_status = ?, embedding_error = ''
		 WHERE tenant_id = ? AND user_id = ? AND record_id = ?
		   AND text = ? AND (? = 1 OR embedding_status <> ?)`,
		string(StatusProcessing), key.TenantID, key.UserID, key.RecordID,
		text, forceFlag, string(StatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("failed to claim record for embedding: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	return r.conflictOrMissing(ctx, key)
}

// conflictOrMissing explains a conditional write that matched no row.
func (r *RecordRepo) conflictOrMissing(ctx context.Context, key Key) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM records WHERE tenant_id = ? AND user_id = ? AND record_id = ?",
		key.TenantID, key.UserID, key.RecordID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check record: %w", err)
	}
	return ErrConflict
}

// MarkCompleted sets the record to completed, clears the error and stamps the embedding time.
// The write only lands while the stored text is still the text that was embedded.
func (r *RecordRepo) MarkCompleted(ctx context.Context, key Key, text string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET embedding_status = ?, embedding_error = '', embedding_last_updated = ?
		 WHERE tenant_id = ? AND user_id = ? AND record_id = ? AND text = ?`,
		string(StatusCompleted), formatTimestamp(at), key.TenantID, key.UserID, key.RecordID, text,
	)
	if err != nil {
		return fmt.Errorf("failed to mark record completed: %w", err)
	}
	return r.requireMatch(ctx, res, key)
}

// MarkFailed sets the record to failed with the given diagnostic, under the same text
// condition as MarkCompleted.
func (r *RecordRepo) MarkFailed(ctx context.Context, key Key, text, diagnostic string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET embedding_status = ?, embedding_error = ?
		 WHERE tenant_id = ? AND user_id = ? AND record_id = ? AND text = ?`,
		string(StatusFailed), diagnostic, key.TenantID, key.UserID, key.RecordID, text,
	)
	if err != nil {
		return fmt.Errorf("failed to mark record failed: %w", err)
	}
	return r.requireMatch(ctx, res, key)
}

// ReleaseClaim moves a processing record back to idle. Records in any other status are
// left alone.
func (r *RecordRepo) ReleaseClaim(ctx context.Context, key Key) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE records SET embedding_status = ?
		 WHERE tenant_id = ? AND user_id = ? AND record_id = ? AND embedding_status = ?`,
		string(StatusIdle), key.TenantID, key.UserID, key.RecordID, string(StatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("failed to release record claim: %w", err)
	}
	return nil
}

func (r *RecordRepo) requireMatch(ctx context.Context, res sql.Result, key Key) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	return r.conflictOrMissing(ctx, key)
}

// CountByStatus returns the number of records per embedding status.
// Statuses with no records are present with a zero count.
func (r *RecordRepo) CountByStatus(ctx context.Context) (map[EmbeddingStatus]int, error) {
	counts := map[EmbeddingStatus]int{
		StatusIdle:       0,
		StatusProcessing: 0,
		StatusCompleted:  0,
		StatusFailed:     0,
	}

	rows, err := r.db.QueryContext(ctx, "SELECT embedding_status, COUNT(*) FROM records GROUP BY embedding_status")
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[EmbeddingStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}

// ListKeysByStatus returns up to limit record keys with the given status, oldest update first.
func (r *RecordRepo) ListKeysByStatus(ctx context.Context, status EmbeddingStatus, limit int) ([]Key, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tenant_id, user_id, record_id FROM records
		 WHERE embedding_status = ? ORDER BY updated_at LIMIT ?`,
		string(status), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.TenantID, &k.UserID, &k.RecordID); err != nil {
			return nil, fmt.Errorf("failed to scan record key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record keys: %w", err)
	}

	return keys, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
