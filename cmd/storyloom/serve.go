package main

import (
	"github.com/aretw0/storyloom/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir|file]",
	Short: "Start the HTTP API",
	Long: `Serves the story over HTTP: the graph and its analysis, a Mermaid view,
play sessions with saved progress, shared save slots and Prometheus metrics
on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return app.Serve(ctx, source(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from STORYLOOM_HTTP_ADDR)")
}
