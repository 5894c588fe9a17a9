// Package feed delivers record change events from the change log to the embedding engine.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"notesync/internal/contextutil"
	"notesync/internal/storage"
)

// ChangeSource abstracts the change log.
type ChangeSource interface {
	Claim(ctx context.Context, limit int, lease time.Duration) ([]storage.Change, error)
	Complete(ctx context.Context, seqs []int64) error
}

// Handler consumes change events. embedsync.Engine satisfies it.
type Handler interface {
	Handle(ctx context.Context, ev storage.ChangeEvent)
}

// Config controls polling and dispatch.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
	Lease        time.Duration
}

// Worker polls the change log and dispatches events. Events of one record are handled
// one at a time in log order; different records are handled concurrently.
type Worker struct {
	source  ChangeSource
	handler Handler
	cfg     Config
	logger  *slog.Logger
}

// NewWorker creates a Worker. Zero config values fall back to defaults.
func NewWorker(source ChangeSource, handler Handler, cfg Config) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 5 * time.Minute
	}
	return &Worker{
		source:  source,
		handler: handler,
		cfg:     cfg,
		logger:  slog.Default(),
	}
}

// Run polls for changes until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.InfoContext(ctx, "change feed started",
		"poll_interval", w.cfg.PollInterval, "batch_size", w.cfg.BatchSize, "concurrency", w.cfg.Concurrency)
	defer w.logger.Info("change feed stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "change feed iteration failed", "error", err)
		}
		if n > 0 && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

// RunOnce claims one batch of changes, handles it and acknowledges it.
// It returns the number of changes handled.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	changes, err := w.source.Claim(ctx, w.cfg.BatchSize, w.cfg.Lease)
	if err != nil {
		return 0, fmt.Errorf("claiming changes: %w", err)
	}
	if len(changes) == 0 {
		return 0, nil
	}

	var order []storage.Key
	byKey := make(map[storage.Key][]storage.Change)
	for _, c := range changes {
		if _, ok := byKey[c.Key]; !ok {
			order = append(order, c.Key)
		}
		byKey[c.Key] = append(byKey[c.Key], c)
	}

	var (
		mu   sync.Mutex
		seqs = make([]int64, 0, len(changes))
	)
	var g errgroup.Group
	g.SetLimit(w.cfg.Concurrency)
	for _, key := range order {
		group := byKey[key]
		g.Go(func() error {
			for _, c := range group {
				// Unhandled changes stay claimed and come back after the lease.
				if ctx.Err() != nil {
					return nil
				}
				w.dispatch(ctx, c)
				mu.Lock()
				seqs = append(seqs, c.Seq)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	// Acknowledge handled work even when shutdown cancelled ctx mid-batch.
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.source.Complete(ackCtx, seqs); err != nil {
		return len(seqs), fmt.Errorf("completing changes: %w", err)
	}

	w.logger.DebugContext(ctx, "change batch handled", "changes", len(seqs), "claimed", len(changes), "records", len(order))
	return len(seqs), nil
}

func (w *Worker) dispatch(ctx context.Context, c storage.Change) {
	logger := w.logger.With("change_seq", c.Seq, "record_id", c.Key.RecordID, "op", c.Op)

	ev, err := c.Event()
	if err != nil {
		// A row that cannot be decoded would otherwise block the log forever.
		logger.ErrorContext(ctx, "dropping undecodable change", "error", err)
		return
	}

	w.handler.Handle(contextutil.WithLogger(ctx, logger), ev)
}
