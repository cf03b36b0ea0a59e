// =============================================================================
// Spreadsheet to JSON Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that the 'convert' and 'version' commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sheet2json)
//   ├── convertCmd (sheet2json convert)
//   └── versionCmd (sheet2json version)
//
// The root command owns the global flags (--config, --verbose) and the
// logger. All diagnostics go to stderr: stdout may carry the output document.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the rules configuration file. Empty means the
// built-in defaults.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// log is the application logger, configured before any command runs.
var log zerolog.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sheet2json",
	Short: "Convert receipt data from spreadsheet format to JSON",
	Long: `sheet2json converts tabular transaction records (one row per line item)
into a normalized JSON document that groups line items under their parent
receipt, validates every field against the configured business rules, and
reports the first violation with its originating row number.

Example Usage:
  sheet2json convert -i receipts.xlsx -o receipts.json
  sheet2json convert -i export.csv                 # document on stdout
  cat export.csv | sheet2json convert -t csv       # read from stdin`,

	// Errors are printed by Execute; keep cobra quiet so validation
	// failures surface exactly once.
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = newLogger(verbose)
	},
}

// newLogger builds the application logger. Debug level with --verbose.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the rules configuration file (defaults are built in)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
