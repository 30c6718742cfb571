// =============================================================================
// Sample Reducer - Shared Types
// =============================================================================
//
// This package contains value types shared by several pipeline stages, kept
// here to avoid import cycles. Types defined here are used by:
//   - htmlparser  (RawRow)
//   - ledger      (LedgerEntry)
//   - validation  (Snapshot, PlanItem)
//   - executor    (PlanItem, ExecutionResult)
//   - inventory   (Snapshot)
//
// =============================================================================

package types

import (
	"fmt"

	"github.com/ginjaninja78/sample-reducer/internal/units"
)

// =============================================================================
// EXTRACTION TYPES
// =============================================================================

// RawRow is one usage row as read from a notebook table, before any numeric
// or unit interpretation.
type RawRow struct {
	// Identity is the inventory identifier parsed from the sample link.
	Identity string

	// DisplayName is the human-readable sample label.
	DisplayName string

	// RawAmount is the amount cell text, untouched.
	RawAmount string

	// RawUnit is the unit cell text, untouched.
	RawUnit string

	// Table is the zero-based index of the source table in the document.
	Table int

	// Row is the zero-based index of the row within the table body.
	Row int
}

// Location describes where the row came from, for diagnostics.
func (r RawRow) Location() string {
	return fmt.Sprintf("table %d, row %d", r.Table, r.Row)
}

// LedgerEntry is the aggregated usage for one identity across the document.
// Unit is always the unit of the first sighting.
type LedgerEntry struct {
	Identity    string
	DisplayName string
	Amount      float64
	Unit        string
}

// =============================================================================
// RECONCILIATION TYPES
// =============================================================================

// Snapshot is the inventory state of one identity at validation time.
type Snapshot struct {
	// Kind is the quantity kind the inventory tracks for the sample.
	Kind units.Kind

	// Available is the amount on hand, expressed in UnitName.
	Available float64

	// UnitName is the inventory's own unit label ("ml", "Liter", ...).
	UnitName string
}

// PlanItem is one validated subtraction.
type PlanItem struct {
	Identity     string
	DisplayName  string
	SourceAmount float64
	SourceUnit   string

	// AmountToSubtract is expressed in the snapshot's base unit and rounded
	// to units.Precision places.
	AmountToSubtract float64

	// BaseUnitName is the unit AmountToSubtract is expressed in.
	BaseUnitName string
}

// ExecutionResult is the outcome of one subtraction call.
type ExecutionResult struct {
	Item      PlanItem
	Succeeded bool
	Error     error
}
