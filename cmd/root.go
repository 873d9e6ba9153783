package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/session-feed/internal"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	databasePath string
	sessionsRoot string
	configPath   string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "session-feed",
	Short: "Aggregate AI coding-assistant sessions into one recency feed",
	Long: `session-feed merges session metadata from two on-disk sources into a
single normalized feed ranked by recency:

  • editor conversations from the key-value SQLite store
  • agent sessions from append-only JSONL logs

Quick Start:
  session-feed list                # Show the merged recent-session feed
  session-feed watch               # Live feed, refreshed on change
  session-feed healthcheck         # Probe both sources`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "", "Key-value store path (overrides config and detection)")
	rootCmd.PersistentFlags().StringVar(&sessionsRoot, "sessions", "", "Agent session logs root (overrides config and detection)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadReaderConfig merges the config file with command-line overrides.
func loadReaderConfig(disableWatcher bool) (internal.Config, *internal.FileConfig, error) {
	fileCfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return internal.Config{}, nil, err
	}

	cfg := fileCfg.ReaderConfig()
	if databasePath != "" {
		cfg.DatabasePath = databasePath
	}
	if sessionsRoot != "" {
		cfg.SessionsRoot = sessionsRoot
	}
	cfg.DisableWatcher = disableWatcher
	return cfg, fileCfg, nil
}
