package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RecordType distinguishes user notes from extracted file text.
type RecordType string

const (
	RecordTypeNote RecordType = "note"
	RecordTypeFile RecordType = "file"
)

// Valid reports whether t is a known record type.
func (t RecordType) Valid() bool {
	return t == RecordTypeNote || t == RecordTypeFile
}

// EmbeddingStatus is the state of a record's vector representation.
type EmbeddingStatus string

const (
	StatusIdle       EmbeddingStatus = "idle"
	StatusProcessing EmbeddingStatus = "processing"
	StatusCompleted  EmbeddingStatus = "completed"
	StatusFailed     EmbeddingStatus = "failed"
)

// Format describes how Record.Text is encoded.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatHTML || f == FormatMarkdown || f == FormatText
}

// Key identifies a content record within a tenant and user.
type Key struct {
	TenantID string
	UserID   string
	RecordID string
}

// DocumentID returns the vector store key for the record: "{tenantId}_{userId}_{recordId}".
func (k Key) DocumentID() string {
	return k.TenantID + "_" + k.UserID + "_" + k.RecordID
}

// Validate checks that every component of the key is set.
func (k Key) Validate() error {
	switch {
	case strings.TrimSpace(k.TenantID) == "":
		return fmt.Errorf("tenant id is required")
	case strings.TrimSpace(k.UserID) == "":
		return fmt.Errorf("user id is required")
	case strings.TrimSpace(k.RecordID) == "":
		return fmt.Errorf("record id is required")
	}
	return nil
}

// Record is a user-authored content record (a note or extracted file text).
type Record struct {
	Key
	Type   RecordType
	Title  string
	Text   string
	Format Format

	// File metadata, only set for RecordTypeFile.
	FileName string
	FileSize int64
	MimeType string

	EmbeddingStatus      EmbeddingStatus
	EmbeddingError       string    // Empty when there is no error
	EmbeddingLastUpdated time.Time // Zero until the first successful embedding

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventKind tags a ChangeEvent.
type EventKind int

const (
	EventCreated EventKind = iota + 1
	EventUpdated
	EventDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeEvent is a single content-record write observed on the change log.
// Created carries only New, Deleted carries only Old, Updated carries both.
type ChangeEvent struct {
	Kind EventKind
	Key  Key
	Old  *Record
	New  *Record
}

// Created builds the event for a newly inserted record.
func Created(rec Record) ChangeEvent {
	return ChangeEvent{Kind: EventCreated, Key: rec.Key, New: &rec}
}

// Updated builds the event for a record that changed from old to cur.
func Updated(old, cur Record) ChangeEvent {
	return ChangeEvent{Kind: EventUpdated, Key: cur.Key, Old: &old, New: &cur}
}

// Deleted builds the event for a removed record.
func Deleted(old Record) ChangeEvent {
	return ChangeEvent{Kind: EventDeleted, Key: old.Key, Old: &old}
}

// Change is a row of the record_changes log written by the records triggers.
type Change struct {
	Seq       int64
	Op        string // "create", "update" or "delete"
	Key       Key
	Before    []byte // JSON snapshot, nil for create
	After     []byte // JSON snapshot, nil for delete
	CreatedAt time.Time
}

// snapshot mirrors the json_object written by the records triggers.
type snapshot struct {
	RecordType           string `json:"record_type"`
	Title                string `json:"title"`
	Text                 string `json:"text"`
	Format               string `json:"format"`
	FileName             string `json:"file_name"`
	FileSize             int64  `json:"file_size"`
	MimeType             string `json:"mime_type"`
	EmbeddingStatus      string `json:"embedding_status"`
	EmbeddingError       string `json:"embedding_error"`
	EmbeddingLastUpdated string `json:"embedding_last_updated"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func decodeSnapshot(key Key, raw []byte) (Record, error) {
	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Record{}, fmt.Errorf("failed to decode record snapshot: %w", err)
	}
	rec := Record{
		Key:             key,
		Type:            RecordType(s.RecordType),
		Title:           s.Title,
		Text:            s.Text,
		Format:          Format(s.Format),
		FileName:        s.FileName,
		FileSize:        s.FileSize,
		MimeType:        s.MimeType,
		EmbeddingStatus: EmbeddingStatus(s.EmbeddingStatus),
		EmbeddingError:  s.EmbeddingError,
	}
	var err error
	if rec.EmbeddingLastUpdated, err = parseTimestamp(s.EmbeddingLastUpdated); err != nil {
		return Record{}, err
	}
	if rec.CreatedAt, err = parseTimestamp(s.CreatedAt); err != nil {
		return Record{}, err
	}
	if rec.UpdatedAt, err = parseTimestamp(s.UpdatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Event converts the log row into a tagged ChangeEvent.
func (c Change) Event() (ChangeEvent, error) {
	switch c.Op {
	case "create":
		rec, err := decodeSnapshot(c.Key, c.After)
		if err != nil {
			return ChangeEvent{}, err
		}
		return Created(rec), nil
	case "update":
		old, err := decodeSnapshot(c.Key, c.Before)
		if err != nil {
			return ChangeEvent{}, err
		}
		rec, err := decodeSnapshot(c.Key, c.After)
		if err != nil {
			return ChangeEvent{}, err
		}
		return Updated(old, rec), nil
	case "delete":
		old, err := decodeSnapshot(c.Key, c.Before)
		if err != nil {
			return ChangeEvent{}, err
		}
		return Deleted(old), nil
	default:
		return ChangeEvent{}, fmt.Errorf("unknown change op %q", c.Op)
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
