// =============================================================================
// Sample Reducer - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   reducer version
//
// OUTPUT:
//   Sample Reducer
//   Version:    1.0.0
//   Build Date: 2026-01-15
//   Go Version: go1.25.0
//
// =============================================================================

package cmd

import (
	"runtime"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// These variables are set at build time using ldflags:
//   go build -ldflags "-X 'github.com/ginjaninja78/sample-reducer/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,

	// The version needs neither configuration nor a logger.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },

	Run: func(cmd *cobra.Command, args []string) {
		pterm.Println("Sample Reducer")
		pterm.Printfln("Version:    %s", Version)
		pterm.Printfln("Build Date: %s", BuildDate)
		pterm.Printfln("Go Version: %s", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
