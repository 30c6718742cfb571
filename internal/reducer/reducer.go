// =============================================================================
// Sample Reducer - Reduction Pipeline
// =============================================================================
//
// Orchestrates one reduction run over a notebook section.
//
// PIPELINE:
//   1. Parse the section HTML and locate usage tables
//   2. Extract rows and aggregate them into the ledger
//   3. Validate the ledger against inventory
//   4. Ask for confirmation of the plan
//   5. Subtract the planned amounts
//
// ORDERING:
//   Steps run strictly in sequence and each inventory call is awaited before
//   the next one is made. Validation always completes before the user is
//   asked, and nothing is subtracted without a yes. Once step 5 has started
//   it runs to the end.
//
// =============================================================================

package reducer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/executor"
	"github.com/ginjaninja78/sample-reducer/internal/htmlparser"
	"github.com/ginjaninja78/sample-reducer/internal/inventory"
	"github.com/ginjaninja78/sample-reducer/internal/ledger"
	"github.com/ginjaninja78/sample-reducer/internal/logging"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
	"github.com/ginjaninja78/sample-reducer/internal/validation"
)

// ErrNothingFound is returned when a section yields no usable usage rows.
var ErrNothingFound = errors.New("no samples found in the section")

// ConfirmationHeader opens the confirmation text.
const ConfirmationHeader = "Are you sure you want to subtract the following amounts from inventory?"

// Confirmer approves a plan. summary lists every planned sample.
type Confirmer interface {
	Confirm(ctx context.Context, summary string) (bool, error)
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Status is the terminal state of a run.
type Status string

const (
	StatusNothingFound          Status = "nothing-found"
	StatusRejected              Status = "rejected"
	StatusValidated             Status = "validated"
	StatusDeclined              Status = "declined"
	StatusCompleted             Status = "completed"
	StatusCompletedWithFailures Status = "completed-with-failures"
)

// Stats contains statistics about a run.
type Stats struct {
	// TablesScanned is the number of tables in the section.
	TablesScanned int

	// CandidateTables is the number of tables recognised as usage tables.
	CandidateTables int

	// RowsExtracted is the number of rows with a sample, amount and unit.
	RowsExtracted int

	// RowsDropped counts data rows without a usable sample, amount or unit.
	RowsDropped int

	// RowsRejected counts extracted rows whose amount was invalid or whose
	// unit could not be merged into the ledger.
	RowsRejected int

	// ProcessingTime is the wall time of the run.
	ProcessingTime time.Duration
}

// Extraction is the ledger of a section.
type Extraction struct {
	Entries []types.LedgerEntry
	Stats   Stats
}

// Outcome is the result of Run.
type Outcome struct {
	// RunID identifies the run in logs and reports.
	RunID string

	Status Status

	// Entries is the ledger the run worked from.
	Entries []types.LedgerEntry

	// Validation is nil when nothing was found.
	Validation *validation.ValidationResult

	// Execution is nil unless the plan was executed.
	Execution *executor.Report

	Stats Stats
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract turns section HTML into a ledger.
//
// RETURNS:
//   - The extraction. Its stats are filled in even when ErrNothingFound is
//     returned alongside it.
//   - An error if the HTML cannot be parsed or holds no usable rows.
func Extract(html string, registry *units.Registry, logger *zap.SugaredLogger) (*Extraction, error) {
	logger = logging.OrNop(logger)

	doc, err := htmlparser.ParseString(html)
	if err != nil {
		return nil, err
	}

	ext := &Extraction{}
	ext.Stats.TablesScanned = doc.Find("table").Length()

	candidates := htmlparser.NewLocator(logger).Locate(doc)
	ext.Stats.CandidateTables = len(candidates)

	extractor := htmlparser.NewExtractor(logger)
	l := ledger.New(registry, logger)

	for _, c := range candidates {
		rows, dropped := extractor.Extract(c)
		ext.Stats.RowsExtracted += len(rows)
		ext.Stats.RowsDropped += dropped

		for _, row := range rows {
			if err := l.AddRow(row); err != nil {
				ext.Stats.RowsRejected++
			}
		}
	}

	ext.Entries = l.Entries()

	logger.Infow("Extraction complete",
		"tables", ext.Stats.TablesScanned,
		"usage_tables", ext.Stats.CandidateTables,
		"rows", ext.Stats.RowsExtracted,
		"dropped", ext.Stats.RowsDropped,
		"rejected", ext.Stats.RowsRejected,
		"samples", len(ext.Entries),
	)
	for _, e := range ext.Entries {
		logger.Debugw("Ledger entry", "id", e.Identity, "sample", e.DisplayName, "amount", e.Amount, "unit", e.Unit)
	}

	if len(ext.Entries) == 0 {
		return ext, ErrNothingFound
	}
	return ext, nil
}

// =============================================================================
// REDUCER
// =============================================================================

// Reducer runs the full pipeline against one inventory.
type Reducer struct {
	registry  *units.Registry
	store     inventory.Store
	confirmer Confirmer
	policy    validation.Policy
	dryRun    bool
	logger    *zap.SugaredLogger
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithPolicy sets the validation policy. The default is all-or-nothing.
func WithPolicy(p validation.Policy) Option {
	return func(r *Reducer) { r.policy = p }
}

// WithDryRun stops runs after validation.
func WithDryRun(dryRun bool) Option {
	return func(r *Reducer) { r.dryRun = dryRun }
}

// New creates a Reducer.
func New(registry *units.Registry, store inventory.Store, confirmer Confirmer, logger *zap.SugaredLogger, opts ...Option) *Reducer {
	r := &Reducer{
		registry:  registry,
		store:     store,
		confirmer: confirmer,
		policy:    validation.AllOrNothing,
		logger:    logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for one section.
//
// RETURNS:
//   - The outcome. Expected terminal states (nothing found, rejected,
//     declined) are statuses, not errors.
//   - An error only when the HTML cannot be parsed or confirmation fails.
func (r *Reducer) Run(ctx context.Context, html string) (*Outcome, error) {
	startTime := time.Now()
	outcome := &Outcome{RunID: uuid.NewString()}
	log := r.logger.With("run_id", outcome.RunID)

	defer func() {
		outcome.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1-2: EXTRACT LEDGER
	// =========================================================================

	ext, err := Extract(html, r.registry, log)
	if ext != nil {
		outcome.Stats = ext.Stats
		outcome.Entries = ext.Entries
	}
	if errors.Is(err, ErrNothingFound) {
		log.Warn("No samples found in the section")
		outcome.Status = StatusNothingFound
		return outcome, nil
	}
	if err != nil {
		return outcome, err
	}

	// =========================================================================
	// STEP 3: VALIDATE
	// =========================================================================

	validator := validation.NewValidator(r.registry, r.store, log).WithPolicy(r.policy)
	result := validator.Validate(ctx, ext.Entries)
	outcome.Validation = result

	if result.Rejected() {
		outcome.Status = StatusRejected
		return outcome, nil
	}

	if r.dryRun {
		log.Infow("Dry run, stopping after validation", "planned", len(result.Plan))
		outcome.Status = StatusValidated
		return outcome, nil
	}

	// =========================================================================
	// STEP 4: CONFIRM
	// =========================================================================

	confirmed, err := r.confirmer.Confirm(ctx, ConfirmationMessage(result.Plan))
	if err != nil {
		return outcome, errors.Wrap(err, "confirmation failed")
	}
	if !confirmed {
		log.Info("Sample quantity reduction cancelled by user")
		outcome.Status = StatusDeclined
		return outcome, nil
	}

	// =========================================================================
	// STEP 5: EXECUTE
	// =========================================================================

	report := executor.New(r.store, log).Execute(ctx, result.Plan)
	outcome.Execution = report

	if report.AllSucceeded {
		outcome.Status = StatusCompleted
	} else {
		outcome.Status = StatusCompletedWithFailures
	}

	return outcome, nil
}

// ConfirmationMessage lists every planned sample with the amount and unit
// the document used.
func ConfirmationMessage(plan []types.PlanItem) string {
	lines := make([]string, 0, len(plan)+1)
	lines = append(lines, ConfirmationHeader)
	for _, item := range plan {
		lines = append(lines, fmt.Sprintf("- %s %s of %s (ID: %s)",
			units.FormatAmount(item.SourceAmount), item.SourceUnit, item.DisplayName, item.Identity))
	}
	return strings.Join(lines, "\n")
}
