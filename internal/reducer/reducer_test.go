package reducer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sample-reducer/internal/confirm"
	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/inventory"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
	"github.com/ginjaninja78/sample-reducer/internal/validation"
)

const mediaSection = `
<h2>Media Preparation</h2>
<table>
  <thead>
    <tr><th>Item</th><th>Qty needed/L</th><th>Unit</th><th>Qty needed</th><th>Unit</th><th>Amount used</th><th>Unit</th></tr>
  </thead>
  <tbody>
    <tr>
      <td><a onclick="Experiment.Section.Sample.view(42)"><span class="protVar">Glucose</span></a></td>
      <td>5</td><td>g</td><td>10</td><td>g</td>
      <td><span class="protVar"><span>  12.5 </span></span></td>
      <td><span class="protVar"><span>ml</span></span></td>
    </tr>
    <tr>
      <td><a onclick="Experiment.Section.Sample.view(7)"><span class="protVar">NaCl</span></a></td>
      <td>1</td><td>g</td><td>2</td><td>g</td><td>2</td><td>g</td>
    </tr>
  </tbody>
</table>
<p>Top-up:</p>
<table>
  <tr><td>Item</td><td>Amount used</td><td>Unit</td></tr>
  <tr>
    <td><span class="protVar"><span><a onclick="Experiment.Section.Sample.view(42)">Glucose</a></span></span></td>
    <td>0.0025</td><td>l</td>
  </tr>
</table>`

// countingStore counts subtract calls on top of a MemoryStore.
type countingStore struct {
	*inventory.MemoryStore
	subtracts int
}

func (s *countingStore) SubtractQuantity(ctx context.Context, id string, amount float64) error {
	s.subtracts++
	return s.MemoryStore.SubtractQuantity(ctx, id, amount)
}

func newStore(t *testing.T, records ...inventory.Record) *countingStore {
	t.Helper()
	mem, err := inventory.NewMemoryStore(records...)
	require.NoError(t, err)
	return &countingStore{MemoryStore: mem}
}

func stocked(glucoseMl float64) []inventory.Record {
	return []inventory.Record{
		{Identity: "42", Name: "Glucose", Kind: units.Volume, Available: glucoseMl, UnitName: "ml"},
		{Identity: "7", Name: "NaCl", Kind: units.Mass, Available: 1000, UnitName: "Gram"},
	}
}

func TestExtract(t *testing.T) {
	ext, err := Extract(mediaSection, units.Default(), nil)
	require.NoError(t, err)

	assert.Equal(t, []types.LedgerEntry{
		{Identity: "42", DisplayName: "Glucose", Amount: 15, Unit: "ml"},
		{Identity: "7", DisplayName: "NaCl", Amount: 2, Unit: "g"},
	}, ext.Entries)
	assert.Equal(t, 2, ext.Stats.TablesScanned)
	assert.Equal(t, 2, ext.Stats.CandidateTables)
	assert.Equal(t, 3, ext.Stats.RowsExtracted)
	assert.Zero(t, ext.Stats.RowsRejected)
}

func TestExtract_NothingFound(t *testing.T) {
	ext, err := Extract(`<table><tr><td>Step</td></tr></table>`, units.Default(), nil)
	assert.True(t, errors.Is(err, ErrNothingFound))
	require.NotNil(t, ext)
	assert.Equal(t, 1, ext.Stats.TablesScanned)
	assert.Empty(t, ext.Entries)
}

func TestRun_Completed(t *testing.T) {
	store := newStore(t, stocked(500)...)
	confirmer := &confirm.Auto{Answer: true}

	outcome, err := New(units.Default(), store, confirmer, nil).Run(context.Background(), mediaSection)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.NotEmpty(t, outcome.RunID)
	require.NotNil(t, outcome.Execution)
	assert.True(t, outcome.Execution.AllSucceeded)
	assert.Equal(t, 2, store.subtracts)

	require.Len(t, confirmer.Seen, 1)
	assert.Equal(t,
		"Are you sure you want to subtract the following amounts from inventory?\n"+
			"- 15 ml of Glucose (ID: 42)\n"+
			"- 2 g of NaCl (ID: 7)",
		confirmer.Seen[0])

	glucose, _ := store.Get("42")
	assert.Equal(t, 485.0, glucose.Available)
	nacl, _ := store.Get("7")
	assert.Equal(t, 998.0, nacl.Available, "non-code unit names count in the base unit")
}

func TestRun_InsufficientRejectsWholeBatch(t *testing.T) {
	store := newStore(t, stocked(10)...)
	confirmer := &confirm.Auto{Answer: true}

	outcome, err := New(units.Default(), store, confirmer, nil).Run(context.Background(), mediaSection)
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, outcome.Status)
	require.Len(t, outcome.Validation.Errors, 1)
	assert.Equal(t,
		"Insufficient quantity for sample Glucose (ID: 42). Available: 10 ml, Requested: 15 ml",
		outcome.Validation.Errors[0].Message)
	assert.Empty(t, outcome.Validation.Plan)
	assert.Nil(t, outcome.Execution)
	assert.Empty(t, confirmer.Seen)
	assert.Zero(t, store.subtracts)
}

func TestRun_UnknownUnit(t *testing.T) {
	html := `<table>
	  <tr><td>Item</td><td>Amount used</td><td>Unit</td></tr>
	  <tr><td><a onclick="Experiment.Section.Sample.view(42)">Glucose</a></td><td>3</td><td>lbs</td></tr>
	</table>`
	store := newStore(t, stocked(500)...)

	outcome, err := New(units.Default(), store, &confirm.Auto{Answer: true}, nil).Run(context.Background(), html)
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, outcome.Status)
	assert.Equal(t,
		"Validation failed for the following samples:\n\nUnknown unit \"lbs\" for sample Glucose (ID: 42)",
		validation.FormatErrors(outcome.Validation.Errors))
	assert.Zero(t, store.subtracts)
}

func TestRun_SkipInvalidPolicy(t *testing.T) {
	store := newStore(t, stocked(10)...)

	outcome, err := New(units.Default(), store, &confirm.Auto{Answer: true}, nil,
		WithPolicy(validation.SkipInvalid)).Run(context.Background(), mediaSection)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Len(t, outcome.Validation.Errors, 1)
	assert.Equal(t, 1, store.subtracts)
}

func TestRun_NothingFound(t *testing.T) {
	store := newStore(t)
	outcome, err := New(units.Default(), store, &confirm.Auto{Answer: true}, nil).Run(context.Background(), "<p>no tables</p>")
	require.NoError(t, err)
	assert.Equal(t, StatusNothingFound, outcome.Status)
	assert.Nil(t, outcome.Validation)
}

func TestRun_Declined(t *testing.T) {
	store := newStore(t, stocked(500)...)
	confirmer := &confirm.Auto{Answer: false}

	outcome, err := New(units.Default(), store, confirmer, nil).Run(context.Background(), mediaSection)
	require.NoError(t, err)

	assert.Equal(t, StatusDeclined, outcome.Status)
	assert.Len(t, confirmer.Seen, 1)
	assert.Zero(t, store.subtracts)
}

func TestRun_DryRun(t *testing.T) {
	store := newStore(t, stocked(500)...)
	confirmer := &confirm.Auto{Answer: true}

	outcome, err := New(units.Default(), store, confirmer, nil, WithDryRun(true)).Run(context.Background(), mediaSection)
	require.NoError(t, err)

	assert.Equal(t, StatusValidated, outcome.Status)
	assert.Len(t, outcome.Validation.Plan, 2)
	assert.Empty(t, confirmer.Seen)
	assert.Zero(t, store.subtracts)
}

type failingConfirmer struct{}

func (failingConfirmer) Confirm(context.Context, string) (bool, error) {
	return false, errors.New("terminal closed")
}

func TestRun_ConfirmationError(t *testing.T) {
	store := newStore(t, stocked(500)...)

	outcome, err := New(units.Default(), store, failingConfirmer{}, nil).Run(context.Background(), mediaSection)
	assert.ErrorContains(t, err, "terminal closed")
	assert.Len(t, outcome.Validation.Plan, 2)
	assert.Zero(t, store.subtracts)
}

func TestRun_CancelledBeforeValidation(t *testing.T) {
	store := newStore(t, stocked(500)...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := New(units.Default(), store, &confirm.Auto{Answer: true}, nil).Run(ctx, mediaSection)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, outcome.Status)
	assert.Len(t, outcome.Validation.Errors, 2)
	assert.Zero(t, store.subtracts)
}

func TestConfirmationMessage(t *testing.T) {
	assert.Equal(t, ConfirmationHeader, ConfirmationMessage(nil))
}
