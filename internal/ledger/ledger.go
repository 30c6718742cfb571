// =============================================================================
// Sample Reducer - Usage Ledger
// =============================================================================
//
// Aggregates usage rows into one entry per sample identity across the whole
// section. The first sighting fixes the entry's unit; later sightings are
// converted into it through the unit registry and summed.
//
// A sighting that cannot be merged (unknown unit, different quantity kind)
// is rejected on its own. The entry and the rest of the document are
// unaffected.
//
// =============================================================================

package ledger

import (
	"go.uber.org/zap"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/logging"
	"github.com/ginjaninja78/sample-reducer/internal/normalize"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

// Ledger accumulates usage by identity. It is not safe for concurrent use.
type Ledger struct {
	registry *units.Registry
	logger   *zap.SugaredLogger

	entries map[string]*types.LedgerEntry
	order   []string
}

// New creates an empty ledger converting with registry.
func New(registry *units.Registry, logger *zap.SugaredLogger) *Ledger {
	return &Ledger{
		registry: registry,
		logger:   logging.OrNop(logger),
		entries:  make(map[string]*types.LedgerEntry),
	}
}

// Add records amount of unit for identity. The unit is normalized first.
//
// RETURNS:
//   - nil when the sighting was recorded or merged
//   - an error wrapping units.ErrUnknownUnit or units.ErrKindMismatch when a
//     repeated sighting could not be merged; the entry keeps its old amount
func (l *Ledger) Add(identity, displayName string, amount float64, unit string) error {
	unit = normalize.Unit(unit)

	entry, exists := l.entries[identity]
	if !exists {
		l.entries[identity] = &types.LedgerEntry{
			Identity:    identity,
			DisplayName: displayName,
			Amount:      amount,
			Unit:        unit,
		}
		l.order = append(l.order, identity)
		return nil
	}

	total, err := l.registry.Sum(entry.Amount, entry.Unit, amount, unit)
	if err != nil {
		l.logger.Warnw("Rejecting repeated sighting",
			"id", identity,
			"sample", displayName,
			"amount", amount,
			"unit", unit,
			"ledger_unit", entry.Unit,
			"error", err,
		)
		return errors.Wrapf(err, "sample %s (ID: %s)", displayName, identity)
	}

	l.logger.Debugw("Merged repeated sighting",
		"id", identity,
		"added", amount,
		"unit", unit,
		"total", total,
		"ledger_unit", entry.Unit,
	)
	entry.Amount = total
	return nil
}

// AddRow normalizes and records a raw extracted row.
func (l *Ledger) AddRow(row types.RawRow) error {
	amount, err := normalize.ParseAmount(row.RawAmount)
	if err != nil {
		l.logger.Warnw("Dropping row with invalid amount",
			"location", row.Location(),
			"id", row.Identity,
			"sample", row.DisplayName,
			"error", err,
		)
		return err
	}
	return l.Add(row.Identity, row.DisplayName, amount, row.RawUnit)
}

// Entries returns copies of the entries in first-sighting order.
func (l *Ledger) Entries() []types.LedgerEntry {
	out := make([]types.LedgerEntry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}
