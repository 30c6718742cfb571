// =============================================================================
// Sample Reducer - Inventory Collaborators
// =============================================================================
//
// The reducer talks to inventory through two narrow interfaces: one to read
// a sample's current quantity, one to subtract from it. Implementations in
// this package:
//   - MemoryStore:  in-process map, used by tests and dry runs
//   - SQLiteStore:  local inventory database (modernc.org/sqlite)
//
// Workbook import/export (workbook.go) moves Records in and out of either.
//
// Amounts passed to SubtractQuantity are already expressed in the unit the
// inventory reports for the sample; stores never convert.
//
// =============================================================================

package inventory

import (
	"context"
	"math"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

var (
	// ErrNotFound is returned for identities the inventory does not know.
	ErrNotFound = errors.New("sample not found in inventory")

	// ErrInsufficient is returned when a subtraction would go below zero.
	ErrInsufficient = errors.New("insufficient quantity in inventory")
)

// Lookup reads the current inventory state of a sample.
type Lookup interface {
	FetchQuantity(ctx context.Context, identity string) (types.Snapshot, error)
}

// Subtractor removes an amount from a sample's inventory.
type Subtractor interface {
	SubtractQuantity(ctx context.Context, identity string, amount float64) error
}

// Store is a complete inventory backend.
type Store interface {
	Lookup
	Subtractor
}

// Record is one sample row of an inventory.
type Record struct {
	Identity  string
	Name      string
	Kind      units.Kind
	Available float64
	UnitName  string
}

// Snapshot returns the record's quantity view.
func (r Record) Snapshot() types.Snapshot {
	return types.Snapshot{
		Kind:      r.Kind,
		Available: r.Available,
		UnitName:  r.UnitName,
	}
}

// validate checks a record before it is stored.
func (r Record) validate() error {
	if r.Identity == "" {
		return errors.New("record identity cannot be empty")
	}
	if r.Kind < units.Volume || r.Kind > units.Count {
		return errors.Newf("record %s: invalid quantity kind", r.Identity)
	}
	if math.IsInf(r.Available, 0) || math.IsNaN(r.Available) {
		return errors.Newf("record %s: available amount must be a finite number", r.Identity)
	}
	if r.Available < 0 {
		return errors.Newf("record %s: available amount cannot be negative", r.Identity)
	}
	return nil
}

func notFound(identity string) error {
	return errors.Wrapf(ErrNotFound, "ID %s", identity)
}

func insufficient(identity string, available, requested float64) error {
	return errors.Wrapf(ErrInsufficient, "ID %s: available %s, requested %s",
		identity, units.FormatAmount(available), units.FormatAmount(requested))
}
