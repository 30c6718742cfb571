// =============================================================================
// Sample Reducer - Executor
// =============================================================================
//
// Applies a confirmed plan: one subtract call per item, strictly in plan
// order. A failed item is recorded and the remaining items are still
// attempted; the user has already approved the whole batch at this point.
//
// Every item passed validation, so any failure here means inventory changed
// underneath us (or the backend misbehaved). Such runs are flagged and logged
// as anomalies.
//
// Execution cannot be cancelled once started: the context's values are kept
// but its cancellation and deadline are dropped.
//
// =============================================================================

package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/sample-reducer/internal/inventory"
	"github.com/ginjaninja78/sample-reducer/internal/logging"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

// Report is the outcome of executing a plan.
type Report struct {
	// Results holds one entry per plan item, in plan order.
	Results []types.ExecutionResult

	// AllSucceeded is true when every subtraction succeeded.
	AllSucceeded bool

	Succeeded int
	Failed    int
}

// Failures returns the failed results.
func (r *Report) Failures() []types.ExecutionResult {
	var out []types.ExecutionResult
	for _, res := range r.Results {
		if !res.Succeeded {
			out = append(out, res)
		}
	}
	return out
}

// Executor applies plans through a Subtractor.
type Executor struct {
	subtractor inventory.Subtractor
	logger     *zap.SugaredLogger
}

// New creates an Executor.
func New(subtractor inventory.Subtractor, logger *zap.SugaredLogger) *Executor {
	return &Executor{
		subtractor: subtractor,
		logger:     logging.OrNop(logger),
	}
}

// Execute subtracts every plan item in order and reports per-item results.
func (e *Executor) Execute(ctx context.Context, plan []types.PlanItem) *Report {
	ctx = context.WithoutCancel(ctx)

	report := &Report{
		Results: make([]types.ExecutionResult, 0, len(plan)),
	}

	for _, item := range plan {
		err := e.subtractor.SubtractQuantity(ctx, item.Identity, item.AmountToSubtract)
		report.Results = append(report.Results, types.ExecutionResult{
			Item:      item,
			Succeeded: err == nil,
			Error:     err,
		})

		if err != nil {
			report.Failed++
			e.logger.Errorw("Error subtracting quantity",
				"id", item.Identity,
				"sample", item.DisplayName,
				"amount", item.AmountToSubtract,
				"unit", item.BaseUnitName,
				"error", err,
			)
			continue
		}

		report.Succeeded++
		e.logger.Infow("Subtracted quantity",
			"id", item.Identity,
			"sample", item.DisplayName,
			"amount", item.AmountToSubtract,
			"unit", item.BaseUnitName,
		)
	}

	report.AllSucceeded = report.Failed == 0
	if !report.AllSucceeded {
		e.logger.Errorw("Some sample quantities could not be subtracted despite validation; inventory may have changed concurrently",
			"failed", report.Failed,
			"succeeded", report.Succeeded,
		)
	}

	return report
}

// ResultMessage renders one result for display, in the units the document
// used.
func ResultMessage(r types.ExecutionResult) string {
	amount := units.FormatAmount(r.Item.SourceAmount)
	if r.Succeeded {
		return fmt.Sprintf("Successfully subtracted %s %s from %s (ID: %s).",
			amount, r.Item.SourceUnit, r.Item.DisplayName, r.Item.Identity)
	}
	return fmt.Sprintf("Error subtracting %s %s for %s (ID: %s): %v",
		amount, r.Item.SourceUnit, r.Item.DisplayName, r.Item.Identity, r.Error)
}

// Summary renders the aggregate outcome.
func (r *Report) Summary() string {
	if r.AllSucceeded {
		return "All sample quantities successfully subtracted."
	}
	return fmt.Sprintf("Some sample quantities could not be subtracted despite validation. "+
		"This is unexpected and may mean inventory changed after validation (%d succeeded, %d failed).",
		r.Succeeded, r.Failed)
}
