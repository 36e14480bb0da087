package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steerlab/voxsteer/internal/config"
	"github.com/steerlab/voxsteer/internal/logging"
)

// Shared CLI flags (used across multiple command files)
var (
	cfgFile string
	verbose bool
	quiet   bool
)

// SetupRootCmd configures the root command with all subcommands and flags.
func SetupRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voxsteer",
		Short: "voxsteer - on-device voice command recognition",
		Long: `voxsteer records short voice commands, trains a small classifier on
them and steers connected clients with live left/right decisions.

Just type 'voxsteer' to start the server.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				logging.Disable()
			}
			logging.SetDebug(verbose)
		},
		Run: func(cmd *cobra.Command, args []string) {
			runListen()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <data dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")

	rootCmd.AddCommand(ListenCmd())
	rootCmd.AddCommand(TrainCmd())
	rootCmd.AddCommand(ModelCmd())
	rootCmd.AddCommand(SamplesCmd())
	rootCmd.AddCommand(VersionCmd())
	return rootCmd
}

// loadConfig resolves the config path and loads it over the defaults.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.DefaultDataDir(), "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

// Execute runs the CLI.
func Execute() {
	if err := SetupRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
