// =============================================================================
// Sample Reducer - Report File Manager
// =============================================================================
//
// This module writes the plain-text records of reduction runs:
//   - Run summaries (ledger, plan outcome, per-item results)
//   - Validation error logs for rejected runs
//   - Report directory management and file naming
//
// REPORT STRATEGY:
//   - One summary per run that reached validation
//   - Rejected runs additionally get an error log listing every error
//   - Reports are never overwritten; names carry a timestamp and run ID
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

const rule = "================================================================================\n"

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates every directory in dirs that does not exist.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}

// =============================================================================
// REPORT FILE NAMING
// =============================================================================

// GenerateReportFileName generates a unique report file name.
//
// PARAMETERS:
//   - format: The name pattern. Placeholders:
//     {uuid}      - a fresh random UUID
//     {timestamp} - YYYYMMDD_HHMMSS
//     {date}      - YYYYMMDD
//     {time}      - HHMMSS
//     {<key>}     - any key of params
//   - params: Run-specific values such as run_id and status.
//
// RETURNS:
//   - The file name with a .txt extension.
//
// EXAMPLE:
//   GenerateReportFileName("{timestamp}_{status}_{run_id}", map[string]string{"status": "completed", "run_id": "5f0c"})
//   -> "20260115_143052_completed_5f0c.txt"
func GenerateReportFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.NewString(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Keep reports inside the output directory.
	result = strings.NewReplacer("/", "_", "\\", "_").Replace(result)

	if !strings.HasSuffix(strings.ToLower(result), ".txt") {
		result += ".txt"
	}

	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single validation error in the log.
type ErrorLogEntry struct {
	Identity string
	Sample   string
	Kind     string
	Message  string
}

// WriteErrorLog writes error entries to a log file in outputDir.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the file could not be written.
func WriteErrorLog(runID string, entries []ErrorLogEntry, outputDir string) (string, error) {
	path := filepath.Join(outputDir, fmt.Sprintf("validation_errors_%s.txt", runID))

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create error log")
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Sample Reducer - Validation Errors\n%s\n", rule)
	fmt.Fprintf(w, "Run ID: %s\nErrors: %d\n\n", runID, len(entries))

	for i, e := range entries {
		fmt.Fprintf(w, "%d. [%s] %s (ID: %s)\n   %s\n\n", i+1, e.Kind, e.Sample, e.Identity, e.Message)
	}
	w.WriteString(rule)

	if err := w.Flush(); err != nil {
		return "", errors.Wrap(err, "failed to flush error log")
	}
	return path, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains the record of one reduction run.
type RunSummary struct {
	RunID     string
	Source    string
	Status    string
	StartTime time.Time
	EndTime   time.Time

	TablesScanned   int
	CandidateTables int
	RowsExtracted   int
	RowsDropped     int
	RowsRejected    int

	// Ledger is the aggregated usage the run worked from.
	Ledger []types.LedgerEntry

	// Errors are the validation messages, in order.
	Errors []string

	// Results are the execution outcomes, if the plan was executed.
	Results []types.ExecutionResult
}

// WriteSummaryLog writes a run summary to outputDir/fileName.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the file could not be written.
func WriteSummaryLog(summary RunSummary, outputDir, fileName string) (string, error) {
	path := filepath.Join(outputDir, fileName)

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create summary file")
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	fmt.Fprintf(w, "Sample Reducer - Run Summary\n%s\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Source:         %s\n"+
		"  Status:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Tables Scanned:   %d\n"+
		"  Usage Tables:     %d\n"+
		"  Rows Extracted:   %d\n"+
		"  Rows Dropped:     %d\n"+
		"  Rows Rejected:    %d\n"+
		"  Samples:          %d\n\n",
		rule,
		summary.RunID,
		summary.Source,
		summary.Status,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TablesScanned,
		summary.CandidateTables,
		summary.RowsExtracted,
		summary.RowsDropped,
		summary.RowsRejected,
		len(summary.Ledger))

	if len(summary.Ledger) > 0 {
		w.WriteString("Ledger:\n")
		for _, e := range summary.Ledger {
			fmt.Fprintf(w, "  %-10s %-30s %s %s\n", e.Identity, e.DisplayName, units.FormatAmount(e.Amount), e.Unit)
		}
		w.WriteString("\n")
	}

	if len(summary.Errors) > 0 {
		w.WriteString("Validation Errors:\n")
		for _, msg := range summary.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
		w.WriteString("\n")
	}

	if len(summary.Results) > 0 {
		w.WriteString("Subtractions:\n")
		for _, r := range summary.Results {
			state := "OK    "
			if !r.Succeeded {
				state = "FAILED"
			}
			fmt.Fprintf(w, "  %s %-10s %s %s (%s %s)",
				state, r.Item.Identity,
				units.FormatAmount(r.Item.SourceAmount), r.Item.SourceUnit,
				units.FormatAmount(r.Item.AmountToSubtract), r.Item.BaseUnitName)
			if r.Error != nil {
				fmt.Fprintf(w, ": %v", r.Error)
			}
			w.WriteString("\n")
		}
		w.WriteString("\n")
	}

	w.WriteString(rule + "End of Summary\n")

	if err := w.Flush(); err != nil {
		return "", errors.Wrap(err, "failed to flush summary file")
	}
	return path, nil
}
