package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/mcp"
	"github.com/custodia-labs/caseforest/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  search           run a case search and return the summary and results
  popular_queries  most frequently executed queries
  recent_queries   pinned queries, then recent ones

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  caseforest mcp serve
  caseforest mcp serve --port 8081`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := newMCPServer()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	watchPrompts(ctx)

	if port > 0 {
		logger.SetTimestamps(true)
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	// stdout carries JSON-RPC; keep it free of anything else.
	cmd.SetOut(io.Discard)
	return server.Run(ctx)
}

func newMCPServer() (*mcp.Server, error) {
	ports := &mcp.Ports{
		Search:  services.Search,
		History: services.History,
	}
	if services.Prompts != nil {
		ports.Prompts = services.Prompts
	}
	return mcp.NewServer(ports)
}
