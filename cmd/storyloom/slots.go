package main

import (
	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List and manage save slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListSlots(cmd.Context(), source(cmd, nil))
	},
}

var slotsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a save slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RenameSlot(cmd.Context(), source(cmd, nil), args[0], args[1])
	},
}

var slotsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a save slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.DeleteSlot(cmd.Context(), source(cmd, nil), args[0])
	},
}

var slotsCopyCmd = &cobra.Command{
	Use:   "copy <id> <name>",
	Short: "Duplicate a save slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.CopySlot(cmd.Context(), source(cmd, nil), args[0], args[1])
	},
}

func init() {
	slotsCmd.AddCommand(slotsRenameCmd, slotsDeleteCmd, slotsCopyCmd)
	rootCmd.AddCommand(slotsCmd)
}
