// =============================================================================
// Sample Reducer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// (extract, reduce, inventory, version) is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reducer)
//   ├── extractCmd   (reducer extract)
//   ├── reduceCmd    (reducer reduce)
//   ├── inventoryCmd (reducer inventory import|export|list)
//   └── versionCmd   (reducer version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --json-log, --db)
//   2. Initializing Viper for REDUCER_* environment overrides
//   3. Loading config.yaml and setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sample-reducer/internal/config"
	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// v holds environment and flag overrides.
var v *viper.Viper

// cfg is the effective configuration, set before any subcommand runs.
var cfg *config.Config

// logger is the application logger, set together with cfg.
var logger *zap.SugaredLogger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reducer",
	Short: "Sample Reducer - Subtract sample usage recorded in notebook sections from inventory",
	Long: `Sample Reducer reads the usage tables of an electronic lab notebook section,
adds up how much of each sample was used, checks every sample against the
inventory and, after confirmation, subtracts the amounts.

Nothing is subtracted unless every sample validates (or the skip-invalid
policy is selected) and the plan has been confirmed.

Example Usage:
  reducer extract --html section.html                              # Show the usage ledger
  reducer reduce --sections exp.yaml --section "Media Preparation" # Validate, confirm and subtract
  reducer reduce --html section.html --dry-run                     # Validate only
  reducer inventory import --workbook stock.xlsx                   # Load inventory`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it with a
// context cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initViper)

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "config.yaml", "Path to the configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.Bool("json-log", false, "Write logs as JSON")
	flags.String("db", "", "Path of the SQLite inventory database (default ./inventory.db)")
	flags.String("output-dir", "", "Directory for run reports (default ./reports)")
}

// initViper binds REDUCER_* environment variables and the persistent flags to
// configuration keys.
func initViper() {
	v = viper.New()
	v.SetEnvPrefix("REDUCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag(config.KeyLogJSON, flags.Lookup("json-log"))
	_ = v.BindPFlag(config.KeyInventoryDB, flags.Lookup("db"))
	_ = v.BindPFlag(config.KeyOutputDir, flags.Lookup("output-dir"))
}

// loadConfig reads the configuration file, applies overrides and builds the
// logger. A missing config file is only an error when --config was given.
func loadConfig(cmd *cobra.Command) error {
	explicit := cmd.Flags().Changed("config")

	c, err := config.Load(cfgFile, !explicit)
	if err != nil {
		return err
	}

	err = c.Apply(func(key string) (string, bool) {
		if v == nil || !v.IsSet(key) {
			return "", false
		}
		return v.GetString(key), true
	})
	if err != nil {
		return err
	}

	if verbose {
		c.LogLevel = "debug"
	}

	zl, err := logging.New(c.LogLevel, c.LogJSON)
	if err != nil {
		return err
	}

	cfg = c
	logger = zl.Sugar()
	logger.Debugw("Configuration loaded",
		"config", cfgFile,
		"inventory_db", cfg.InventoryDB,
		"output_dir", cfg.OutputDir,
		"policy", cfg.ValidationPolicy,
	)
	return nil
}
