package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/types"
)

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "a", "b")

	require.NoError(t, EnsureDirectories(nested, ""))
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGenerateReportFileName(t *testing.T) {
	name := GenerateReportFileName("{date}_{status}_{run_id}", map[string]string{
		"status": "completed",
		"run_id": "abc",
	})

	assert.True(t, strings.HasSuffix(name, "_completed_abc.txt"), name)
	assert.Len(t, name, len("20260101_completed_abc.txt"))

	assert.Equal(t, "a_b.txt", GenerateReportFileName("a/b", nil))
	assert.Equal(t, "report.TXT", GenerateReportFileName("report.TXT", nil))
	assert.NotEqual(t, GenerateReportFileName("{uuid}", nil), GenerateReportFileName("{uuid}", nil))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteErrorLog("run-1", []ErrorLogEntry{
		{Identity: "42", Sample: "Glucose", Kind: "unknown-unit", Message: `Unknown unit "lbs" for sample Glucose (ID: 42)`},
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "validation_errors_run-1.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Errors: 1")
	assert.Contains(t, string(data), `1. [unknown-unit] Glucose (ID: 42)`)
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)
	item := types.PlanItem{
		Identity: "42", DisplayName: "Glucose",
		SourceAmount: 15, SourceUnit: "ml",
		AmountToSubtract: 0.015, BaseUnitName: "Liter",
	}

	path, err := WriteSummaryLog(RunSummary{
		RunID:         "run-1",
		Source:        "Media Preparation",
		Status:        "completed-with-failures",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Second),
		TablesScanned: 2,
		Ledger:        []types.LedgerEntry{{Identity: "42", DisplayName: "Glucose", Amount: 15, Unit: "ml"}},
		Results: []types.ExecutionResult{
			{Item: item, Succeeded: true},
			{Item: item, Error: errors.New("stock changed")},
		},
	}, t.TempDir(), "summary.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Run ID:         run-1")
	assert.Contains(t, text, "Duration:       2s")
	assert.Contains(t, text, "Tables Scanned:   2")
	assert.Contains(t, text, "15 ml")
	assert.Contains(t, text, "OK     42")
	assert.Contains(t, text, "(0.015 Liter): stock changed")
	assert.True(t, strings.HasSuffix(text, "End of Summary\n"))
}
