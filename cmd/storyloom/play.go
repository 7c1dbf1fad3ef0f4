package main

import (
	"github.com/aretw0/storyloom/internal/cli"
	"github.com/spf13/cobra"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [dir|file]",
	Short: "Play the story interactively",
	Long: `Starts the text player. Progress is saved after every step to the configured
backend and resumed on the next run. Type 'help' during play for commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts cli.PlayOptions
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.Style, _ = cmd.Flags().GetString("style")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Slot, _ = cmd.Flags().GetString("slot")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return app.Play(ctx, source(cmd, args), opts)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, prompts or markdown rendering)")
	playCmd.Flags().Bool("plain", false, "Print scene text without markdown rendering")
	playCmd.Flags().String("style", "", "Markdown style (dark, light, notty, ...); detected when empty")
	playCmd.Flags().Bool("fresh", false, "Start over instead of resuming")
	playCmd.Flags().String("slot", "", "Load a save slot before playing")
}
