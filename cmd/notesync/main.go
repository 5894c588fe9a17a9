package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API stores user content records, keeps their embeddings up to date and finds
// connections between new content and what a user has written before.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: notesync API
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "notesync",
	Short: "Keeps note embeddings in sync and finds related content",
	Long: `notesync stores user notes and extracted file text, keeps their embeddings in a
Qdrant collection up to date, and answers "what is this related to" queries.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func init() {
	rootCmd.AddCommand(serveCmd, reprocessCmd, importCmd, mcpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
