// Package mcpserver exposes the insight operation as an MCP tool.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"notesync/internal/insight"
)

// ToolFindConnections is the name of the insight tool.
const ToolFindConnections = "find_connections"

// New creates an MCP server with the notesync tools registered.
func New(insights insight.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"notesync",
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions("notesync finds documents related to a piece of writing and summarizes what connects them."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool(ToolFindConnections,
			mcp.WithDescription("Find the user's documents related to the given content and generate insights across them."),
			mcp.WithString("user_id", mcp.Description("Owner of the documents to search"), mcp.Required()),
			mcp.WithString("app_id", mcp.Description("Application (tenant) the user belongs to"), mcp.Required()),
			mcp.WithString("title", mcp.Description("Title of the current document")),
			mcp.WithString("content", mcp.Description("Content of the current document; HTML is converted to text"), mcp.Required()),
		),
		findConnections(insights),
	)

	return s
}

func findConnections(insights insight.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := insights.FindConnections(ctx, insight.Request{
			UserID:   req.GetString("user_id", ""),
			TenantID: req.GetString("app_id", ""),
			Title:    req.GetString("title", ""),
			Content:  req.GetString("content", ""),
		})
		if err != nil {
			var rateErr *insight.RateLimitError
			if errors.As(err, &rateErr) {
				return mcpError(fmt.Sprintf("rate limited, retry in %d seconds", rateErr.RetryAfterSeconds())), nil
			}
			return mcpError(err.Error()), nil
		}

		b, err := json.Marshal(resp)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode response: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
