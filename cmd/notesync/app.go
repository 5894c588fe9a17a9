package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"notesync/internal/config"
	"notesync/internal/contextutil"
	"notesync/internal/embedsync"
	"notesync/internal/insight"
	"notesync/internal/llm"
	"notesync/internal/ratelimit"
	"notesync/internal/storage"
	"notesync/internal/vectorstore"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg     *config.Config
	db      *sql.DB
	records *storage.RecordRepo
	changes *storage.ChangeRepo

	// Set by connectServices.
	vectors  *vectorstore.QdrantStore
	embedder *llm.EmbeddingsClient
	engine   embedsync.Engine
}

// setupLogging installs the default slog logger. Commands speaking a protocol on stdout
// pass os.Stderr.
func setupLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
	return logger
}

// openApp loads configuration, configures logging and opens the database.
// The returned context carries the logger.
func openApp(ctx context.Context, logOut io.Writer) (context.Context, *app, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := setupLogging(cfg, logOut)
	ctx = contextutil.WithLogger(ctx, logger)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return ctx, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "Database initialized", "path", cfg.DBPath)

	return ctx, &app{
		cfg:     cfg,
		db:      db,
		records: storage.NewRecordRepo(db),
		changes: storage.NewChangeRepo(db),
	}, nil
}

// connectServices connects to Qdrant and the embeddings service and builds the sync engine.
// The embedding client is validated against the configured vector size before use.
func (a *app) connectServices(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	vectors, err := vectorstore.NewQdrantStore(a.cfg.QdrantURL)
	if err != nil {
		return fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	a.vectors = vectors

	if err := vectors.EnsureCollection(ctx, a.cfg.QdrantCollection, a.cfg.QdrantVectorSize, "user_id", "app_id"); err != nil {
		return fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	logger.InfoContext(ctx, "Qdrant collection ready",
		"collection", a.cfg.QdrantCollection, "vector_size", a.cfg.QdrantVectorSize)

	a.embedder = llm.NewEmbeddingsClient(a.cfg.EmbeddingBaseURL, a.cfg.LLMAPIKey, a.cfg.EmbeddingModelName, a.cfg.QdrantVectorSize)
	if err := a.embedder.Probe(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Embedding client validated", "vector_size", a.cfg.QdrantVectorSize)

	a.engine = embedsync.NewEngine(a.records, a.embedder, vectors, embedsync.Config{
		Collection:    a.cfg.QdrantCollection,
		EmbedTimeout:  a.cfg.EmbedTimeout,
		VectorTimeout: a.cfg.VectorTimeout,
		StoreTimeout:  a.cfg.StoreTimeout,
	})
	return nil
}

// insightService builds the connection finder. connectServices must have run.
func (a *app) insightService() (insight.Service, error) {
	limiter, err := ratelimit.New(a.cfg.InsightMinInterval, a.cfg.RateLimitMaxUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	generator := llm.NewClient(a.cfg.LLMBaseURL, a.cfg.LLMAPIKey, a.cfg.LLMModelName)

	return insight.NewService(a.embedder, a.vectors, generator, limiter, insight.Config{
		Collection:      a.cfg.QdrantCollection,
		MatchThreshold:  a.cfg.MatchThreshold,
		MatchCount:      a.cfg.MatchCount,
		EmbedTimeout:    a.cfg.EmbedTimeout,
		VectorTimeout:   a.cfg.VectorTimeout,
		GenerateTimeout: a.cfg.GenerateTimeout,
	}), nil
}

func (a *app) Close() {
	if a.vectors != nil {
		_ = a.vectors.Close()
	}
	_ = a.db.Close()
}
