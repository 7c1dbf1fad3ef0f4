package main

import (
	"fmt"
	"os"

	"github.com/aretw0/storyloom/internal/cli"
	"github.com/aretw0/storyloom/internal/config"
	"github.com/spf13/cobra"
)

// app is built from the environment and flags before any command runs.
var app *cli.App

var rootCmd = &cobra.Command{
	Use:   "storyloom",
	Short: "Storyloom plays and checks branching stories",
	Long: `Storyloom loads an interactive story from a directory of markdown scenes
or from a single JSON/YAML story file, validates its graph, and plays it with
saved progress and save slots.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		app = cli.NewApp(cfg)
		app.Out = cmd.OutOrStdout()
		app.Err = cmd.ErrOrStderr()
		app.In = cmd.InOrStdin()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("dir", ".", "Scene directory or story file")
	f.String("backend", "", "Storage backend: memory, file, redis, sqlite or badger")
	f.String("data-dir", "", "Directory for file, sqlite and badger storage")
	f.String("storage-key", "", "Key prefix for saved progress and slots")
	f.String("redis-addr", "", "Redis address for the redis backend")
	f.Int("max-slots", 0, "Inventory capacity")
	f.String("log-level", "", "Log level: debug, info, warn or error")
	f.String("log-format", "", "Log format: text or json")
}

// loadConfig reads STORYLOOM_* variables, then applies the flags that were
// set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("backend", &cfg.Backend)
	str("data-dir", &cfg.DataDir)
	str("storage-key", &cfg.StorageKey)
	str("redis-addr", &cfg.RedisAddr)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	if f.Changed("max-slots") {
		cfg.MaxSlots, _ = f.GetInt("max-slots")
	}
	if f.Lookup("addr") != nil && f.Changed("addr") {
		cfg.HTTPAddr, _ = f.GetString("addr")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// source resolves the story location: the first argument, else --dir.
func source(cmd *cobra.Command, args []string) string {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		return args[0]
	}
	return dir
}
