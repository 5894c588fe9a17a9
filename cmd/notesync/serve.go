package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"notesync/internal/contextutil"
	"notesync/internal/feed"
	"notesync/internal/handlers"
	"notesync/internal/http"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the embedding change feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	ctx, a, err := openApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := contextutil.LoggerFromContext(ctx)

	if err := a.connectServices(ctx); err != nil {
		return err
	}
	insights, err := a.insightService()
	if err != nil {
		return err
	}

	router := http.NewRouter(&http.Deps{
		Insights: insights,
		Records:  a.records,
		Engine:   a.engine,
		Health: handlers.HealthDeps{
			Vectors:        a.vectors,
			CollectionName: a.cfg.QdrantCollection,
			DB:             a.db,
			Records:        a.records,
			Changes:        a.changes,
		},
	})

	worker := feed.NewWorker(a.changes, a.engine, feed.Config{
		PollInterval: a.cfg.FeedPollInterval,
		BatchSize:    a.cfg.FeedBatchSize,
		Concurrency:  a.cfg.FeedConcurrency,
		Lease:        a.cfg.FeedLease,
	})

	srv := &nethttp.Server{
		Addr:              ":" + a.cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.InfoContext(ctx, "Starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
