// =============================================================================
// Sample Reducer - Reduce Command
// =============================================================================
//
// This file defines the 'reduce' command, which runs the whole pipeline for
// one section against the SQLite inventory.
//
// COMMAND USAGE:
//   reducer reduce [source flags] [flags]
//
// FLAGS:
//   --html / --sections / --section : Select the section (see extract)
//   --yes      : Confirm without prompting
//   --dry-run  : Validate only, never subtract
//   --policy   : all-or-nothing (default) or skip-invalid
//
// EXIT STATUS:
//   Non-zero when validation rejects the batch or any subtraction fails.
//   Declining the confirmation is not an error.
//
// =============================================================================

package cmd

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sample-reducer/internal/confirm"
	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/executor"
	"github.com/ginjaninja78/sample-reducer/internal/inventory"
	"github.com/ginjaninja78/sample-reducer/internal/reducer"
	"github.com/ginjaninja78/sample-reducer/internal/units"
	"github.com/ginjaninja78/sample-reducer/internal/validation"
	"github.com/ginjaninja78/sample-reducer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var reduceSource sourceFlags

// assumeYes skips the interactive confirmation.
var assumeYes bool

// dryRun stops after validation.
var dryRun bool

// policyName overrides validation_policy from the configuration.
var policyName string

// =============================================================================
// REDUCE COMMAND DEFINITION
// =============================================================================

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Subtract the sample usage of a section from inventory",
	Long: `The reduce command aggregates the usage tables of a section, validates every
sample against the inventory and, once the plan is confirmed, subtracts the
amounts one sample at a time.

Validation failures are listed together and, under the default policy,
nothing is subtracted. A run report is written to the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReduce(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	reduceSource.register(reduceCmd)

	reduceCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Confirm the plan without prompting")
	reduceCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate against inventory without subtracting")
	reduceCmd.Flags().StringVar(&policyName, "policy", "", "Validation policy: all-or-nothing or skip-invalid")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runReduce(cmd *cobra.Command) error {
	ctx := cmd.Context()
	startTime := time.Now()

	// =========================================================================
	// STEP 1: RESOLVE INPUTS
	// =========================================================================

	html, label, err := reduceSource.load()
	if err != nil {
		return err
	}

	policy := cfg.Policy()
	if policyName != "" {
		if policy, err = validation.ParsePolicy(policyName); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: OPEN INVENTORY
	// =========================================================================

	db, err := inventory.OpenSQLite(cfg.InventoryDB)
	if err != nil {
		return err
	}
	defer db.Close()

	store := inventory.NewSQLiteStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	var confirmer reducer.Confirmer = confirm.NewInteractive()
	if assumeYes {
		confirmer = &confirm.Auto{Answer: true}
	}

	// =========================================================================
	// STEP 3: RUN
	// =========================================================================

	r := reducer.New(units.Default(), store, confirmer, logger,
		reducer.WithPolicy(policy),
		reducer.WithDryRun(dryRun),
	)

	outcome, runErr := r.Run(ctx, html)
	if outcome == nil {
		return runErr
	}

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	printOutcome(label, outcome)

	if cfg.ReportsEnabled() && outcome.Validation != nil {
		if err := writeReports(label, startTime, outcome); err != nil {
			logger.Errorw("Failed to write run report", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	switch outcome.Status {
	case reducer.StatusRejected:
		return errors.New("validation failed, nothing was subtracted")
	case reducer.StatusCompletedWithFailures:
		return errors.Newf("%d subtraction(s) failed", outcome.Execution.Failed)
	}
	return nil
}

// printOutcome shows the result of a run on the terminal.
func printOutcome(label string, outcome *reducer.Outcome) {
	switch outcome.Status {
	case reducer.StatusNothingFound:
		pterm.Warning.Printfln("No samples found in %s", label)
		return
	case reducer.StatusDeclined:
		pterm.Info.Println("Sample quantity reduction cancelled.")
		return
	}

	if v := outcome.Validation; v != nil && len(v.Errors) > 0 {
		pterm.Error.Println(validation.FormatErrors(v.Errors))
	}

	switch outcome.Status {
	case reducer.StatusValidated:
		pterm.Success.Printfln("Dry run: %d sample(s) validated, nothing subtracted.", len(outcome.Validation.Plan))
		pterm.Println(reducer.ConfirmationMessage(outcome.Validation.Plan))

	case reducer.StatusCompleted, reducer.StatusCompletedWithFailures:
		for _, res := range outcome.Execution.Results {
			if res.Succeeded {
				pterm.Success.Println(executor.ResultMessage(res))
			} else {
				pterm.Error.Println(executor.ResultMessage(res))
			}
		}
		if outcome.Execution.AllSucceeded {
			pterm.Success.Println(outcome.Execution.Summary())
		} else {
			pterm.Warning.Println(outcome.Execution.Summary())
		}
	}
}

// writeReports writes the run summary and, when validation failed, the
// error log.
func writeReports(label string, startTime time.Time, outcome *reducer.Outcome) error {
	if err := utils.EnsureDirectories(cfg.OutputDir); err != nil {
		return err
	}

	summary := utils.RunSummary{
		RunID:           outcome.RunID,
		Source:          label,
		Status:          string(outcome.Status),
		StartTime:       startTime,
		EndTime:         startTime.Add(outcome.Stats.ProcessingTime),
		TablesScanned:   outcome.Stats.TablesScanned,
		CandidateTables: outcome.Stats.CandidateTables,
		RowsExtracted:   outcome.Stats.RowsExtracted,
		RowsDropped:     outcome.Stats.RowsDropped,
		RowsRejected:    outcome.Stats.RowsRejected,
		Ledger:          outcome.Entries,
	}

	var errorEntries []utils.ErrorLogEntry
	for _, verr := range outcome.Validation.Errors {
		summary.Errors = append(summary.Errors, verr.Message)
		errorEntries = append(errorEntries, utils.ErrorLogEntry{
			Identity: verr.Identity,
			Sample:   verr.DisplayName,
			Kind:     string(verr.Kind),
			Message:  verr.Message,
		})
	}
	if outcome.Execution != nil {
		summary.Results = outcome.Execution.Results
	}

	name := utils.GenerateReportFileName(cfg.ReportNameFormat, map[string]string{
		"run_id": outcome.RunID,
		"status": string(outcome.Status),
	})
	path, err := utils.WriteSummaryLog(summary, cfg.OutputDir, name)
	if err != nil {
		return err
	}
	logger.Infow("Run report written", "path", path)

	if len(errorEntries) > 0 {
		path, err := utils.WriteErrorLog(outcome.RunID, errorEntries, cfg.OutputDir)
		if err != nil {
			return err
		}
		logger.Infow("Validation error log written", "path", path)
	}
	return nil
}
