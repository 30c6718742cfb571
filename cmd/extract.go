// =============================================================================
// Sample Reducer - Extract Command
// =============================================================================
//
// Prints the usage ledger of a section without touching inventory.
//
// COMMAND USAGE:
//   reducer extract --html section.html
//   reducer extract --sections exp.yaml --section "Media Preparation"
//
// =============================================================================

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/reducer"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

var extractSource sourceFlags

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Show the aggregated sample usage of a section",
	Long: `Locate the usage tables of a notebook section, read every sample row and
print the per-sample totals. Inventory is not consulted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract()
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractSource.register(extractCmd)
}

func runExtract() error {
	html, label, err := extractSource.load()
	if err != nil {
		return err
	}

	ext, err := reducer.Extract(html, units.Default(), logger)
	if errors.Is(err, reducer.ErrNothingFound) {
		pterm.Warning.Printfln("No samples found in %s", label)
		return nil
	}
	if err != nil {
		return err
	}

	pterm.Info.Printfln("%s: %d table(s), %d usage table(s), %d row(s), %d dropped, %d rejected",
		label,
		ext.Stats.TablesScanned,
		ext.Stats.CandidateTables,
		ext.Stats.RowsExtracted,
		ext.Stats.RowsDropped,
		ext.Stats.RowsRejected,
	)
	return renderLedger(ext.Entries)
}

// renderLedger prints ledger entries as a table.
func renderLedger(entries []types.LedgerEntry) error {
	data := pterm.TableData{{"ID", "Sample", "Amount", "Unit"}}
	for _, e := range entries {
		data = append(data, []string{e.Identity, e.DisplayName, units.FormatAmount(e.Amount), e.Unit})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
