// =============================================================================
// Sample Reducer - Reconciliation Validator
// =============================================================================
//
// Checks the aggregated ledger against live inventory before anything is
// subtracted. For each entry, in ledger order and one lookup at a time:
//   1. Fetch the inventory snapshot (failure is recorded, scan continues)
//   2. The entry's unit must be registered
//   3. The unit's quantity kind must match the snapshot's
//   4. The amount, converted into the snapshot's unit, must not round to 0
//   5. The converted amount must be available
//
// ERROR HANDLING:
//   - Errors are collected, never returned early, so the user sees every
//     problem of the batch at once
//   - Each error names the sample and its identity
//   - Under the default policy a single error rejects the whole batch and
//     no plan is produced
//
// SNAPSHOT UNIT:
//   If the inventory's unit name is itself a registered code of the right
//   kind ("ml"), amounts are converted into it. Otherwise ("Liter", "Gram")
//   the inventory is assumed to count in the kind's base unit.
//
// =============================================================================

package validation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/inventory"
	"github.com/ginjaninja78/sample-reducer/internal/logging"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ErrorKind classifies a validation error.
type ErrorKind string

const (
	KindUnknownUnit   ErrorKind = "unknown-unit"
	KindKindMismatch  ErrorKind = "kind-mismatch"
	KindInsufficient  ErrorKind = "insufficient"
	KindLookupFailure ErrorKind = "lookup-failure"
	KindNegligible    ErrorKind = "negligible"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	// Identity is the inventory identifier of the sample.
	Identity string

	// DisplayName is the sample label from the document.
	DisplayName string

	// Kind classifies the failure.
	Kind ErrorKind

	// Message is the user-facing text.
	Message string

	// Cause is the underlying error for lookup failures.
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the lookup error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Policy decides what happens to valid entries when others fail.
type Policy int

const (
	// AllOrNothing produces no plan when any entry fails.
	AllOrNothing Policy = iota

	// SkipInvalid plans the valid entries and reports the rest.
	SkipInvalid
)

// ParsePolicy reads a policy name from configuration.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all-or-nothing":
		return AllOrNothing, nil
	case "skip-invalid":
		return SkipInvalid, nil
	default:
		return 0, errors.Newf("unknown validation policy %q (expected all-or-nothing or skip-invalid)", s)
	}
}

// String returns the configuration name of the policy.
func (p Policy) String() string {
	if p == SkipInvalid {
		return "skip-invalid"
	}
	return "all-or-nothing"
}

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Plan holds the subtractions that may be executed. It is empty when
	// the batch is rejected.
	Plan []types.PlanItem

	// Errors contains every validation error in ledger order.
	Errors []*ValidationError

	// EntriesValidated is the number of ledger entries checked.
	EntriesValidated int
}

// Rejected reports whether nothing may be executed.
func (r *ValidationResult) Rejected() bool {
	return len(r.Plan) == 0
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator reconciles ledger entries with inventory.
type Validator struct {
	registry *units.Registry
	lookup   inventory.Lookup
	policy   Policy
	logger   *zap.SugaredLogger
}

// NewValidator creates a Validator with the AllOrNothing policy.
func NewValidator(registry *units.Registry, lookup inventory.Lookup, logger *zap.SugaredLogger) *Validator {
	return &Validator{
		registry: registry,
		lookup:   lookup,
		policy:   AllOrNothing,
		logger:   logging.OrNop(logger),
	}
}

// WithPolicy returns a copy of the validator using policy.
func (v *Validator) WithPolicy(policy Policy) *Validator {
	c := *v
	c.policy = policy
	return &c
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks every entry and returns the plan or the errors.
//
// PARAMETERS:
//   - ctx: Passed to every inventory lookup.
//   - entries: The finalized ledger, in first-sighting order.
//
// RETURNS:
//   - The validation result. Lookup failures are reported inside it; the
//     method itself does not fail.
func (v *Validator) Validate(ctx context.Context, entries []types.LedgerEntry) *ValidationResult {
	result := &ValidationResult{
		EntriesValidated: len(entries),
	}

	var plan []types.PlanItem
	for _, entry := range entries {
		item, verr := v.validateEntry(ctx, entry)
		if verr != nil {
			v.logger.Warnw("Validation failed",
				"id", entry.Identity,
				"sample", entry.DisplayName,
				"kind", verr.Kind,
				"message", verr.Message,
			)
			result.Errors = append(result.Errors, verr)
			continue
		}
		plan = append(plan, item)
	}

	result.IsValid = len(result.Errors) == 0
	if result.IsValid || v.policy == SkipInvalid {
		result.Plan = plan
	}

	v.logger.Infow("Validation complete",
		"entries", len(entries),
		"errors", len(result.Errors),
		"planned", len(result.Plan),
		"policy", v.policy.String(),
	)

	return result
}

// validateEntry checks one entry against a fresh snapshot.
func (v *Validator) validateEntry(ctx context.Context, entry types.LedgerEntry) (types.PlanItem, *ValidationError) {
	fail := func(kind ErrorKind, cause error, format string, args ...any) (types.PlanItem, *ValidationError) {
		return types.PlanItem{}, &ValidationError{
			Identity:    entry.Identity,
			DisplayName: entry.DisplayName,
			Kind:        kind,
			Message:     fmt.Sprintf(format, args...),
			Cause:       cause,
		}
	}

	snapshot, err := v.lookup.FetchQuantity(ctx, entry.Identity)
	if err != nil {
		return fail(KindLookupFailure, err,
			"Error fetching sample settings for sample %s (ID: %s): %v",
			entry.DisplayName, entry.Identity, err)
	}

	def, ok := v.registry.Lookup(entry.Unit)
	if !ok {
		return fail(KindUnknownUnit, nil,
			"Unknown unit \"%s\" for sample %s (ID: %s)",
			entry.Unit, entry.DisplayName, entry.Identity)
	}

	if def.Kind != snapshot.Kind {
		return fail(KindKindMismatch, nil,
			"Quantity type mismatch for sample %s (ID: %s). Expected %s, got %s",
			entry.DisplayName, entry.Identity, snapshot.Kind, def.Kind)
	}

	target, unitName := v.snapshotUnit(snapshot)
	amount, err := v.registry.Convert(entry.Amount, def.Code, target)
	if err != nil {
		// Only reachable when the registry lacks the kind's base unit.
		return fail(KindKindMismatch, err,
			"Quantity type mismatch for sample %s (ID: %s). Expected %s, got %s",
			entry.DisplayName, entry.Identity, snapshot.Kind, def.Kind)
	}

	if amount == 0 {
		return fail(KindNegligible, nil,
			"Amount too small for sample %s (ID: %s). %s %s rounds to 0 %s",
			entry.DisplayName, entry.Identity,
			units.FormatAmount(entry.Amount), entry.Unit, unitName)
	}

	if snapshot.Available < amount {
		return fail(KindInsufficient, nil,
			"Insufficient quantity for sample %s (ID: %s). Available: %s %s, Requested: %s %s",
			entry.DisplayName, entry.Identity,
			units.FormatAmount(snapshot.Available), unitName,
			units.FormatAmount(amount), unitName)
	}

	return types.PlanItem{
		Identity:         entry.Identity,
		DisplayName:      entry.DisplayName,
		SourceAmount:     entry.Amount,
		SourceUnit:       entry.Unit,
		AmountToSubtract: amount,
		BaseUnitName:     unitName,
	}, nil
}

// snapshotUnit returns the registry code amounts must be converted into and
// the unit name to show for it.
func (v *Validator) snapshotUnit(s types.Snapshot) (code, name string) {
	name = s.UnitName
	if def, ok := v.registry.Lookup(s.UnitName); ok && def.Kind == s.Kind {
		code = def.Code
	} else {
		code = s.Kind.BaseCode()
	}
	if name == "" {
		name = code
	}
	return code, name
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display, one line per error in
// the order they were found.
//
// RETURNS:
//   - An empty string when there are no errors.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return ""
	}

	lines := make([]string, 0, len(errs))
	for _, err := range errs {
		lines = append(lines, err.Error())
	}

	return "Validation failed for the following samples:\n\n" + strings.Join(lines, "\n")
}
