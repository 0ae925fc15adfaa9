// =============================================================================
// Receipt Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (receipt-generator)
//   ├── renderCmd   (receipt-generator render)
//   ├── validateCmd (receipt-generator validate)
//   ├── historyCmd  (receipt-generator history)
//   └── versionCmd  (receipt-generator version)
//
// CONFIGURATION:
//   Before any subcommand except 'version' runs, the root command loads the
//   main configuration file and builds the logger from it.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/receipt-generator/internal/config"
	"github.com/ginjaninja78/receipt-generator/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and log are set by loadRuntime before a subcommand runs.
var (
	mainConfig *config.MainConfig
	log        *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "receipt-generator",
	Short: "Receipt Generator - Print customer transactions as one-page PDF receipts",
	Long: `Receipt Generator lays out customer transactions as single-page PDF
receipts: a store header, the customer block, an itemized table with a total,
and a thank-you footer.

Transactions are read from YAML, CSV or XLSX files in the input directory.
Each transaction becomes one PDF named after its date.

Example Usage:
  receipt-generator render                    # Render every file in the input directory
  receipt-generator render --sample           # Render the built-in sample receipt
  receipt-generator render --file june.csv    # Render a single file
  receipt-generator validate                  # Check inputs without rendering
  receipt-generator history --limit 20        # List recently rendered receipts`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return loadRuntime()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// loadRuntime reads the configuration file and builds the logger.
func loadRuntime() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	l, err := logger.New(cfg.LoggerConfig(verbose))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	mainConfig = cfg
	log = l
	log.Debug("configuration loaded", zap.String("config", cfgFile))
	return nil
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (YAML or TOML)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
