package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"notesync/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the find_connections tool over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// stdout carries the protocol; logs go to stderr.
		ctx, a, err := openApp(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.connectServices(ctx); err != nil {
			return err
		}
		insights, err := a.insightService()
		if err != nil {
			return err
		}

		stdio := server.NewStdioServer(mcpserver.New(insights, version))
		if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
