package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/plumedoc/plume/internal/config"
	"github.com/plumedoc/plume/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "plume",
	Short: "Plume is a guided document-assembly assistant",
	Long:  `Plume drives a turn-by-turn conversation that picks a document template, fills it with client data and hands back the finished text.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
}

// loadConfig resolves the --config flag into a Config plus a logger.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return cfg, logging.New(level), nil
}
