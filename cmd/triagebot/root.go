package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/unifecaf/triagebot/internal/config"
	"github.com/unifecaf/triagebot/internal/logging"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "triagebot",
	Short: "triagebot is the UniFECAF help desk triage assistant",
	Long: `triagebot routes students and visitors through the UniFECAF help desk menus,
answers free text with a completion model (or canned answers when offline)
and records every finished conversation for auditing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			loaded.LogFormat, _ = cmd.Flags().GetString("log-format")
		}
		if cmd.Flags().Changed("store") {
			loaded.Session.Store, _ = cmd.Flags().GetString("store")
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		level, err := logging.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewWithFormat(os.Stderr, level, loaded.LogFormat)
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
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().String("store", config.StoreMemory, "Session store (memory, redis, file)")
}
