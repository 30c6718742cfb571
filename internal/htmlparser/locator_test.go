package htmlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func locate(t *testing.T, html string) []Candidate {
	t.Helper()
	doc, err := ParseString(html)
	require.NoError(t, err)
	return NewLocator(nil).Locate(doc)
}

func TestLocate_LegacyLayout(t *testing.T) {
	candidates := locate(t, legacyTable)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.False(t, c.HeaderFromBody)
	assert.Equal(t, ColumnMapping{Identity: 0, Amount: 5, Unit: 6, Strategy: "legacy-fixed-layout"}, c.Mapping)
	assert.Equal(t, 1, c.Rows().Length())
}

func TestLocate_UnitHeaderLayout(t *testing.T) {
	candidates := locate(t, compactTable)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.True(t, c.HeaderFromBody)
	assert.Equal(t, []string{"used sample", "amount used", "unit"}, c.Headers)
	assert.Equal(t, ColumnMapping{Identity: 0, Amount: 1, Unit: 2, Strategy: "unit-header"}, c.Mapping)
	assert.Equal(t, 1, c.Rows().Length(), "header row taken from the body is not a data row")
}

func TestLocate_ExplicitUsedAmount(t *testing.T) {
	candidates := locate(t, explicitTable)
	require.Len(t, candidates, 1)
	assert.Equal(t, ColumnMapping{Identity: 0, Amount: 4, Unit: 5, Strategy: "explicit-used-amount"}, candidates[0].Mapping)
}

func TestLocate_ExplicitUsedAmountInLastColumn(t *testing.T) {
	html := `<table>
	  <tr><td>Item</td><td>A</td><td>B</td><td>C</td><td>D</td><td>E</td><td>Used amount</td></tr>
	</table>`
	assert.Empty(t, locate(t, html))
}

func TestLocate_SkipsTablesWithoutUnitColumn(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	doc, err := ParseString(unitlessTable + unrelatedTable + compactTable)
	require.NoError(t, err)

	candidates := NewLocator(zap.New(core).Sugar()).Locate(doc)
	require.Len(t, candidates, 1)
	assert.Equal(t, 2, candidates[0].Index)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Skipping usage table without a unit column", warnings[0].Message)
}

func TestLocate_DocumentOrder(t *testing.T) {
	candidates := locate(t, explicitTable+unrelatedTable+legacyTable)
	require.Len(t, candidates, 2)
	assert.Equal(t, 0, candidates[0].Index)
	assert.Equal(t, 2, candidates[1].Index)
}

func TestLocate_CustomStrategy(t *testing.T) {
	// A layout that keeps the unit in the column before the amount.
	before := Strategy{
		Name:    "unit-before-amount",
		Applies: func(h []string) bool { return true },
		Resolve: func(h []string) (int, int, bool) {
			amount := indexContaining(h, "amount used")
			return amount, amount - 1, amount > 0
		},
	}

	doc, err := ParseString(`<table>
	  <tr><td>Item</td><td>Unit</td><td>Amount used</td></tr>
	</table>`)
	require.NoError(t, err)

	candidates := NewLocator(nil, before).Locate(doc)
	require.Len(t, candidates, 1)
	assert.Equal(t, ColumnMapping{Identity: 0, Amount: 2, Unit: 1, Strategy: "unit-before-amount"}, candidates[0].Mapping)
}

func TestLocate_NoTables(t *testing.T) {
	assert.Empty(t, locate(t, "<p>No tables here</p>"))
}

func TestLocate_UnitHeaderSpelling(t *testing.T) {
	for _, unit := range []string{"Unit", "Unit:", "Unit :", "Unit&nbsp;:", "&nbsp;UNIT&nbsp;"} {
		t.Run(unit, func(t *testing.T) {
			candidates := locate(t, `<table>
			  <tr><td>Item</td><td>Amount used</td><td>`+unit+`</td></tr>
			  <tr><td>x</td><td>1</td><td>ml</td></tr>
			</table>`)
			require.Len(t, candidates, 1)
			assert.Equal(t, 2, candidates[0].Mapping.Unit)
		})
	}
}

func TestLocate_NonBreakingSpaceHeaders(t *testing.T) {
	candidates := locate(t, `<table>
	  <thead><tr><th>Used&nbsp;sample&nbsp;:</th><th>Amount&nbsp;&nbsp;used</th><th>Unit&nbsp;:</th></tr></thead>
	  <tbody><tr><td>x</td><td>1</td><td>ml</td></tr></tbody>
	</table>`)
	require.Len(t, candidates, 1)
	assert.Equal(t, []string{"used sample", "amount used", "unit"}, candidates[0].Headers)
	assert.Equal(t, ColumnMapping{Identity: 0, Amount: 1, Unit: 2, Strategy: "unit-header"}, candidates[0].Mapping)
}
