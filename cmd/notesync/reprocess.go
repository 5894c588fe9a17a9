package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notesync/internal/contextutil"
	"notesync/internal/embedsync"
	"notesync/internal/storage"
)

// maxFailedBatch bounds how many failed records one reprocess --failed run retries.
const maxFailedBatch = 1000

var reprocessCmd = &cobra.Command{
	Use:   "reprocess",
	Short: "Re-embed one record or every failed record",
	Long: `Re-embed one record or every failed record.

Examples:
  notesync reprocess --app app1 --user u1 --record n1
  notesync reprocess --app app1 --user u1 --record n1 --force
  notesync reprocess --failed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, _ := cmd.Flags().GetString("app")
		userID, _ := cmd.Flags().GetString("user")
		recordID, _ := cmd.Flags().GetString("record")
		force, _ := cmd.Flags().GetBool("force")
		failed, _ := cmd.Flags().GetBool("failed")

		var keys []storage.Key
		if !failed {
			key := storage.Key{TenantID: appID, UserID: userID, RecordID: recordID}
			if err := key.Validate(); err != nil {
				return fmt.Errorf("--app, --user and --record are required unless --failed is set: %w", err)
			}
			keys = append(keys, key)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return reprocess(ctx, keys, force)
	},
}

func init() {
	reprocessCmd.Flags().String("app", "", "tenant (app) id of the record")
	reprocessCmd.Flags().String("user", "", "user id of the record")
	reprocessCmd.Flags().String("record", "", "record id")
	reprocessCmd.Flags().Bool("force", false, "take over a record stuck in processing")
	reprocessCmd.Flags().Bool("failed", false, "retry every record whose last embedding failed")
}

// reprocess re-embeds keys, or every failed record when keys is empty.
func reprocess(ctx context.Context, keys []storage.Key, force bool) error {
	ctx, a, err := openApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := contextutil.LoggerFromContext(ctx)

	if err := a.connectServices(ctx); err != nil {
		return err
	}

	if len(keys) == 0 {
		keys, err = a.records.ListKeysByStatus(ctx, storage.StatusFailed, maxFailedBatch)
		if err != nil {
			return fmt.Errorf("failed to list failed records: %w", err)
		}
	}

	var failures int
	for _, key := range keys {
		err := a.engine.Reprocess(ctx, key, force)
		switch {
		case err == nil:
			fmt.Printf("reprocessed %s\n", key.DocumentID())
		case errors.Is(err, embedsync.ErrInFlight):
			failures++
			fmt.Printf("skipped %s: embedding in progress (use --force to take over)\n", key.DocumentID())
		case errors.Is(err, embedsync.ErrStale):
			fmt.Printf("skipped %s: text changed while embedding, the server embeds the new text\n", key.DocumentID())
		default:
			failures++
			logger.ErrorContext(ctx, "reprocess failed", "document_id", key.DocumentID(), "error", err)
			fmt.Printf("failed %s: %v\n", key.DocumentID(), err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d records could not be reprocessed", failures, len(keys))
	}
	return nil
}
