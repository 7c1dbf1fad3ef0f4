package main

import (
	"strings"

	"github.com/aretw0/storyloom/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir|file]",
	Short: "Check the story graph for consistency",
	Long: `Reports duplicate ids, a missing start node, broken or unresolved choice
targets, unreachable scenes and dead ends. Errors fail the command; warnings
fail it only with --strict.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		return app.Validate(cmd.Context(), source(cmd, args), strict)
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [dir|file]",
	Short: "Export the story graph as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD). With --progress, the saved position and visited scenes are highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		progress, _ := cmd.Flags().GetBool("progress")
		return app.Graph(cmd.Context(), source(cmd, args), progress)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [dir|file]",
	Short: "Convert a story between shapes and formats",
	Long: `Prints the story in the authoring shape (ordered node list) or the runtime
shape (node map) as JSON or YAML, or writes it as a directory of markdown
scenes with --shape scenes --out <dir>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shape, _ := cmd.Flags().GetString("shape")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		return app.Convert(cmd.Context(), source(cmd, args), shape, format, out)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <node>[,<node>...] [dir|file]",
	Short: "Extract a branch of the story",
	Long:  `Prints the scenes reachable from the given nodes as a standalone story. The first node becomes the start.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		var seeds []string
		for _, s := range strings.Split(args[0], ",") {
			if s = strings.TrimSpace(s); s != "" {
				seeds = append(seeds, s)
			}
		}
		return app.Extract(cmd.Context(), source(cmd, args[1:]), seeds, format)
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <to> [dir|file]",
	Short: "Show the fewest choices leading to a scene",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		return app.Path(cmd.Context(), source(cmd, args[1:]), from, args[0])
	},
}

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create a sample story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Init(cmd.Context(), args[0])
	},
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings too")
	graphCmd.Flags().Bool("progress", false, "Overlay saved progress from the configured backend")
	convertCmd.Flags().String("shape", cli.ShapeAuthoring, "Output shape: authoring, runtime or scenes")
	convertCmd.Flags().String("format", "json", "Output format: json or yaml")
	convertCmd.Flags().String("out", "", "Output directory for --shape scenes")
	extractCmd.Flags().String("format", "json", "Output format: json or yaml")
	pathCmd.Flags().String("from", "", "Origin scene (defaults to the start scene)")

	rootCmd.AddCommand(validateCmd, graphCmd, convertCmd, extractCmd, pathCmd, initCmd)
}
