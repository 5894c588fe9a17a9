package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notesync/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a directory of markdown files as notes",
	Long: `Import a directory of markdown files as notes owned by one user.

Record ids are derived from file paths, so importing the same directory again updates
the existing notes. Embeddings are produced by a running "notesync serve".

Example:
  notesync import --dir ~/vault --app app1 --user u1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		appID, _ := cmd.Flags().GetString("app")
		userID, _ := cmd.Flags().GetString("user")
		if dir == "" || appID == "" || userID == "" {
			return fmt.Errorf("--dir, --app and --user are required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ctx, a, err := openApp(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := importer.New(a.records, appID, userID).Import(ctx, dir)
		if err != nil {
			return err
		}

		fmt.Printf("scanned %d, imported %d, failed %d\n", res.Scanned, res.Imported, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d files could not be imported", res.Failed)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("dir", "", "directory to import")
	importCmd.Flags().String("app", "", "tenant (app) id for the imported notes")
	importCmd.Flags().String("user", "", "user id owning the imported notes")
}
