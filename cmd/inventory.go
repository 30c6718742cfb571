// =============================================================================
// Sample Reducer - Inventory Commands
// =============================================================================
//
// COMMAND USAGE:
//   reducer inventory import --workbook stock.xlsx
//   reducer inventory export --workbook stock.xlsx
//   reducer inventory list
//
// The workbook layout is one header row followed by
//   ID | Name | Quantity Type | Amount | Unit
//
// =============================================================================

package cmd

import (
	"context"
	"database/sql"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sample-reducer/internal/inventory"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

var workbookPath string

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the SQLite inventory",
}

var inventoryImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Insert or update inventory records from an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *inventory.SQLiteStore) error {
			records, err := inventory.LoadWorkbook(workbookPath)
			if err != nil {
				return err
			}
			if err := store.Upsert(cmd.Context(), records...); err != nil {
				return err
			}
			pterm.Success.Printfln("Imported %d sample(s) from %s", len(records), workbookPath)
			return nil
		})
	},
}

var inventoryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the inventory to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *inventory.SQLiteStore) error {
			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if err := inventory.ExportWorkbook(workbookPath, records); err != nil {
				return err
			}
			pterm.Success.Printfln("Exported %d sample(s) to %s", len(records), workbookPath)
			return nil
		})
	},
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the inventory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *inventory.SQLiteStore) error {
			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			data := pterm.TableData{{"ID", "Name", "Quantity Type", "Amount", "Unit"}}
			for _, r := range records {
				data = append(data, []string{
					r.Identity, r.Name, r.Kind.String(), units.FormatAmount(r.Available), r.UnitName,
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		})
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryImportCmd, inventoryExportCmd, inventoryListCmd)

	for _, c := range []*cobra.Command{inventoryImportCmd, inventoryExportCmd} {
		c.Flags().StringVar(&workbookPath, "workbook", "", "Path of the XLSX workbook")
		_ = c.MarkFlagRequired("workbook")
	}
}

// withStore opens and migrates the configured inventory database for fn.
func withStore(ctx context.Context, fn func(*inventory.SQLiteStore) error) error {
	db, err := inventory.OpenSQLite(cfg.InventoryDB)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Warnw("Failed to close inventory database", "error", err)
		}
	}(db)

	store := inventory.NewSQLiteStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	return fn(store)
}
