// Package cmd defines and implements the CLI commands for the harvester
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seedscout/founder-harvest/internal/logging"
	"github.com/seedscout/founder-harvest/pkg/config"
)

var (
	cfgFile    string
	devLogging bool

	// rootLogger is built once in PersistentPreRunE and shared by all
	// subcommands.
	rootLogger *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "An incremental harvester of founder profiles from startup directories.",
		Long: `harvester walks a paginated startup directory batch by batch, renders
profile pages in a headless browser when plain HTTP is not enough, and
accumulates founder records into checkpointed snapshots that survive
interruption and resume where they left off.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
			}
			if err := config.InitConfig(); err != nil {
				return fmt.Errorf("initialize configuration: %w", err)
			}
			logger, err := logging.New(devLogging)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			rootLogger = logger
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rootLogger != nil {
				_ = rootLogger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/harvester, $HOME/.harvester)")
	cmd.PersistentFlags().BoolVar(&devLogging, "dev", false, "human-readable development logging")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newBatchesCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if rootLogger != nil {
			rootLogger.Error("Command execution failed", zap.Error(err))
			_ = rootLogger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
