// =============================================================================
// Sample Reducer - Main Entry Point
// =============================================================================
//
// USAGE:
//   reducer extract     - Show the usage ledger of a notebook section
//   reducer reduce      - Validate, confirm and subtract a section's usage
//   reducer inventory   - Import, export and list inventory
//   reducer version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Pipeline stages, inventory backends, configuration
//   - pkg/           : Report file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sample-reducer/cmd"
)

func main() {
	cmd.Execute()
}
