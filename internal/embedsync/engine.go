// Package embedsync keeps the vector store in step with content records. It reacts to
// record change events, decides whether a record needs a new embedding and drives the
// record's embedding status through idle, processing, completed and failed.
package embedsync

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks notesync/internal/embedsync Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks notesync/internal/embedsync Engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notesync/internal/contextutil"
	"notesync/internal/markup"
	"notesync/internal/storage"
	"notesync/internal/vectorstore"
)

// MaxDiagnosticLength caps the error text recorded on a failed record.
const MaxDiagnosticLength = 300

var (
	// ErrInFlight is returned by Reprocess when an embedding attempt is already running.
	ErrInFlight = errors.New("embedding already in progress")
	// ErrNothingToEmbed is returned by Reprocess when the record has no text after markup removal.
	ErrNothingToEmbed = errors.New("record has no text to embed")
	// ErrStale is returned when the record's text changed while it was being embedded. The
	// attempt is discarded and the record goes back to idle for the newer text.
	ErrStale = errors.New("record changed during embedding")
)

// Embedder turns text into a vector.
// This interface is defined from the engine's perspective (consumer-first).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine synchronizes record embeddings with the vector store.
type Engine interface {
	// Handle processes a single change event. It never returns an error: outcomes are
	// recorded on the record and in the logs.
	Handle(ctx context.Context, ev storage.ChangeEvent)
	// Reprocess re-embeds a stored record regardless of whether its text changed.
	// A record already in processing is only taken over when force is set.
	Reprocess(ctx context.Context, key storage.Key, force bool) error
}

// Config holds the engine's collection and per-call timeouts.
type Config struct {
	Collection    string
	EmbedTimeout  time.Duration
	VectorTimeout time.Duration
	StoreTimeout  time.Duration
}

type syncEngine struct {
	records  storage.RecordStore
	embedder Embedder
	vectors  vectorstore.VectorStore
	cfg      Config
	now      func() time.Time
}

// NewEngine creates a new embedding synchronization engine.
func NewEngine(records storage.RecordStore, embedder Embedder, vectors vectorstore.VectorStore, cfg Config) Engine {
	return &syncEngine{
		records:  records,
		embedder: embedder,
		vectors:  vectors,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Handle processes a single change event.
func (e *syncEngine) Handle(ctx context.Context, ev storage.ChangeEvent) {
	logger := contextutil.LoggerFromContext(ctx).With("document_id", ev.Key.DocumentID(), "event", ev.Kind.String())
	ctx = contextutil.WithLogger(ctx, logger)

	switch ev.Kind {
	case storage.EventDeleted:
		e.deleteVector(ctx, ev.Key)
		return
	case storage.EventCreated, storage.EventUpdated:
	default:
		logger.WarnContext(ctx, "ignoring change event of unknown kind")
		return
	}

	rec := ev.New
	if rec == nil {
		logger.WarnContext(ctx, "ignoring change event without record")
		return
	}

	// Our own processing write, or a write racing with an attempt in flight.
	if rec.EmbeddingStatus == storage.StatusProcessing {
		logger.DebugContext(ctx, "skipping record in processing")
		return
	}

	// Content unchanged since the last success, or the engine's own final status write coming
	// back through the feed. A released claim (processing to idle) goes on to be embedded.
	if ev.Kind == storage.EventUpdated && ev.Old != nil && ev.Old.Text == rec.Text &&
		(ev.Old.EmbeddingStatus == storage.StatusCompleted ||
			(ev.Old.EmbeddingStatus == storage.StatusProcessing && rec.EmbeddingStatus != storage.StatusIdle)) {
		logger.DebugContext(ctx, "skipping unchanged record", "status", rec.EmbeddingStatus)
		return
	}

	plain, err := markup.ToPlainText(string(rec.Format), rec.Text)
	if err != nil {
		logger.WarnContext(ctx, "skipping record with unreadable text", "format", rec.Format, "error", err)
		return
	}
	if plain == "" {
		logger.DebugContext(ctx, "skipping record without text")
		return
	}

	if err := e.claim(ctx, rec.Key, rec.Text, false); err != nil {
		if errors.Is(err, storage.ErrConflict) || errors.Is(err, storage.ErrNotFound) {
			logger.DebugContext(ctx, "record not claimed", "reason", err)
			return
		}
		logger.ErrorContext(ctx, "failed to mark record processing", "error", err)
		return
	}

	if err := e.embedAndIndex(ctx, rec, plain); err != nil && !errors.Is(err, ErrStale) {
		logger.WarnContext(ctx, "embedding failed", "error", err)
	}
}

// Reprocess re-embeds a stored record.
func (e *syncEngine) Reprocess(ctx context.Context, key storage.Key, force bool) error {
	logger := contextutil.LoggerFromContext(ctx).With("document_id", key.DocumentID(), "force", force)
	ctx = contextutil.WithLogger(ctx, logger)

	storeCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	rec, err := e.records.Get(storeCtx, key)
	cancel()
	if err != nil {
		return err
	}

	if rec.EmbeddingStatus == storage.StatusProcessing && !force {
		return ErrInFlight
	}

	plain, err := markup.ToPlainText(string(rec.Format), rec.Text)
	if err != nil {
		return fmt.Errorf("failed to read record text: %w", err)
	}
	if plain == "" {
		return ErrNothingToEmbed
	}

	if err := e.claim(ctx, key, rec.Text, force); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return ErrInFlight
		}
		return err
	}

	logger.InfoContext(ctx, "reprocessing record")
	return e.embedAndIndex(ctx, rec, plain)
}

func (e *syncEngine) claim(ctx context.Context, key storage.Key, text string, force bool) error {
	storeCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()
	return e.records.ClaimForEmbedding(storeCtx, key, text, force)
}

// embedAndIndex runs after a successful claim and always leaves the record in a final
// status unless that status write itself fails. Final status writes only land while the
// record still holds the embedded text; otherwise the attempt ends with ErrStale.
func (e *syncEngine) embedAndIndex(ctx context.Context, rec *storage.Record, plain string) error {
	logger := contextutil.LoggerFromContext(ctx)
	start := e.now()

	embedCtx, cancel := context.WithTimeout(ctx, e.cfg.EmbedTimeout)
	vec, err := e.embedder.Embed(embedCtx, plain)
	cancel()
	if err == nil && len(vec) == 0 {
		err = errors.New("embedding service returned an empty vector")
	}
	if err != nil {
		return e.fail(ctx, rec, fmt.Errorf("embedding failed: %w", err))
	}

	point := vectorstore.Point{
		ID:   vectorstore.PointID(rec.DocumentID()),
		Vec:  vec,
		Meta: payload(rec, plain),
	}
	vectorCtx, cancel := context.WithTimeout(ctx, e.cfg.VectorTimeout)
	err = e.vectors.Upsert(vectorCtx, e.cfg.Collection, []vectorstore.Point{point})
	cancel()
	if err != nil {
		return e.fail(ctx, rec, fmt.Errorf("indexing failed: %w", err))
	}

	err = e.settle(ctx, rec, func(storeCtx context.Context) error {
		return e.records.MarkCompleted(storeCtx, rec.Key, rec.Text, e.now())
	})
	if errors.Is(err, ErrStale) {
		return err
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to mark record completed; record stays in processing", "error", err)
		return fmt.Errorf("failed to record completion: %w", err)
	}

	logger.InfoContext(ctx, "record embedded", "dims", len(vec), "duration", e.now().Sub(start))
	return nil
}

// fail records cause on the record and returns it, or ErrStale when the text moved on.
func (e *syncEngine) fail(ctx context.Context, rec *storage.Record, cause error) error {
	err := e.settle(ctx, rec, func(storeCtx context.Context) error {
		return e.records.MarkFailed(storeCtx, rec.Key, rec.Text, Diagnostic(cause))
	})
	if errors.Is(err, ErrStale) {
		return err
	}
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to mark record failed; record stays in processing",
			"error", err, "cause", cause)
	}
	return cause
}

// settle runs a final status write. Final writes outlive a cancelled caller so the record does
// not stay in processing. A conflict means the text changed while the attempt ran: the claim
// is released so the feed embeds the newer text.
func (e *syncEngine) settle(ctx context.Context, rec *storage.Record, write func(context.Context) error) error {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.StoreTimeout)
	defer cancel()

	err := write(storeCtx)
	if !errors.Is(err, storage.ErrConflict) {
		return err
	}
	if err := e.records.ReleaseClaim(storeCtx, rec.Key); err != nil {
		return fmt.Errorf("failed to release stale claim: %w", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "record changed during embedding; attempt discarded")
	return ErrStale
}

func (e *syncEngine) deleteVector(ctx context.Context, key storage.Key) {
	logger := contextutil.LoggerFromContext(ctx)

	vectorCtx, cancel := context.WithTimeout(ctx, e.cfg.VectorTimeout)
	defer cancel()
	if err := e.vectors.Delete(vectorCtx, e.cfg.Collection, []string{vectorstore.PointID(key.DocumentID())}); err != nil {
		logger.ErrorContext(ctx, "failed to delete record vector", "error", err)
		return
	}
	logger.DebugContext(ctx, "record vector deleted")
}

// Diagnostic shortens err to at most MaxDiagnosticLength characters.
func Diagnostic(err error) string {
	msg := strings.TrimSpace(err.Error())
	runes := []rune(msg)
	if len(runes) <= MaxDiagnosticLength {
		return msg
	}
	return string(runes[:MaxDiagnosticLength-3]) + "..."
}

// payload builds the vector point payload stored alongside the embedding.
func payload(rec *storage.Record, plain string) map[string]any {
	metadata := map[string]any{
		"format":     string(rec.Format),
		"updated_at": rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if rec.Type == storage.RecordTypeFile {
		metadata["file_name"] = rec.FileName
		metadata["file_size"] = rec.FileSize
		metadata["mime_type"] = rec.MimeType
	}

	return map[string]any{
		"document_id":   rec.DocumentID(),
		"user_id":       rec.UserID,
		"app_id":        rec.TenantID,
		"record_id":     rec.RecordID,
		"document_type": string(rec.Type),
		"title":         rec.Title,
		"content":       plain,
		"metadata":      metadata,
	}
}
