package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// The DSN options apply to every pooled connection; WAL lets the feed worker
// read while the API writes.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// snapshotColumns is the json_object argument list used by the change log triggers.
// %[1]s is replaced by NEW or OLD. Keep in sync with the snapshot struct.
const snapshotColumns = `json_object(
	'record_type', %[1]s.record_type,
	'title', %[1]s.title,
	'text', %[1]s.text,
	'format', %[1]s.format,
	'file_name', %[1]s.file_name,
	'file_size', %[1]s.file_size,
	'mime_type', %[1]s.mime_type,
	'embedding_status', %[1]s.embedding_status,
	'embedding_error', %[1]s.embedding_error,
	'embedding_last_updated', %[1]s.embedding_last_updated,
	'created_at', %[1]s.created_at,
	'updated_at', %[1]s.updated_at)`

// Migrate runs database migrations to create the required tables and triggers.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	newSnap := fmt.Sprintf(snapshotColumns, "NEW")
	oldSnap := fmt.Sprintf(snapshotColumns, "OLD")

	schema := []string{
		`CREATE TABLE IF NOT EXISTS records (
			tenant_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			record_id TEXT NOT NULL,
			record_type TEXT NOT NULL CHECK (record_type IN ('note', 'file')),
			title TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL DEFAULT 'html',
			file_name TEXT NOT NULL DEFAULT '',
			file_size INTEGER NOT NULL DEFAULT 0,
			mime_type TEXT NOT NULL DEFAULT '',
			embedding_status TEXT NOT NULL DEFAULT 'idle',
			embedding_error TEXT NOT NULL DEFAULT '',
			embedding_last_updated TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (tenant_id, user_id, record_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_status ON records(embedding_status);`,
		`CREATE TABLE IF NOT EXISTS record_changes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			op TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			record_id TEXT NOT NULL,
			before_json TEXT,
			after_json TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
			claimed_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_record_changes_claimed ON record_changes(claimed_at);`,
		`CREATE TRIGGER IF NOT EXISTS records_after_insert AFTER INSERT ON records
		BEGIN
			INSERT INTO record_changes (op, tenant_id, user_id, record_id, after_json)
			VALUES ('create', NEW.tenant_id, NEW.user_id, NEW.record_id, ` + newSnap + `);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS records_after_update AFTER UPDATE ON records
		BEGIN
			INSERT INTO record_changes (op, tenant_id, user_id, record_id, before_json, after_json)
			VALUES ('update', NEW.tenant_id, NEW.user_id, NEW.record_id, ` + oldSnap + `, ` + newSnap + `);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS records_after_delete AFTER DELETE ON records
		BEGIN
			INSERT INTO record_changes (op, tenant_id, user_id, record_id, before_json)
			VALUES ('delete', OLD.tenant_id, OLD.user_id, OLD.record_id, ` + oldSnap + `);
		END;`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
