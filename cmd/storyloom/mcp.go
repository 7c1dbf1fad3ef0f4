package main

import (
	"github.com/aretw0/storyloom/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir|file]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes story analysis to AI agents as MCP tools: validate_story,
shortest_path, extract_branch and render_mermaid, plus the storyloom://story
resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("sse-addr")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return app.MCP(ctx, source(cmd, args), transport, addr)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport type (stdio or sse)")
	mcpCmd.Flags().String("sse-addr", ":8081", "Address for the SSE transport")
}
