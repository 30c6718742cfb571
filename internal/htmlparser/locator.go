// =============================================================================
// Sample Reducer - Table Locator
// =============================================================================
//
// Finds the tables in a section that carry usage data and decides which
// columns hold the sample, the amount used and its unit.
//
// TABLE ACCEPTANCE:
//   A table is a candidate when its normalized headers contain
//   - an identity column: header containing "item" or "used sample"
//   - an amount column:   header containing "amount used" or "used amount"
//
// COLUMN MAPPING:
//   Layouts are described by an ordered list of strategies. The first
//   strategy whose predicate holds for the header set decides the mapping;
//   if it cannot resolve a unit column the table is skipped. Supporting a
//   new editor layout means appending a Strategy, nothing else.
//
// HEADER ROW:
//   Taken from <thead> when it has a row, otherwise from the first body row,
//   which is then excluded from the data rows.
//
// =============================================================================

package htmlparser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sample-reducer/internal/logging"
	"github.com/ginjaninja78/sample-reducer/internal/normalize"
)

// WideTableColumns is the header count from which the wide layouts apply.
const WideTableColumns = 7

// Legacy fixed positions of the amount-used pair in wide tables.
const (
	legacyAmountColumn = 5
	legacyUnitColumn   = 6
)

var (
	identityPatterns = []string{"item", "used sample"}
	amountPatterns   = []string{"amount used", "used amount"}
)

// =============================================================================
// COLUMN MAPPING STRATEGIES
// =============================================================================

// ColumnMapping holds the zero-based column indices of a usage table.
type ColumnMapping struct {
	Identity int
	Amount   int
	Unit     int

	// Strategy names the strategy that produced the mapping.
	Strategy string
}

// maxIndex returns the highest column index the mapping reads.
func (m ColumnMapping) maxIndex() int {
	return max(m.Identity, m.Amount, m.Unit)
}

// Strategy maps one family of table layouts.
type Strategy struct {
	// Name identifies the layout in diagnostics.
	Name string

	// Applies reports whether the strategy is responsible for the headers.
	Applies func(headers []string) bool

	// Resolve returns the amount and unit columns. ok is false when the
	// layout is recognised but no unit column can be determined.
	Resolve func(headers []string) (amount, unit int, ok bool)
}

// DefaultStrategies returns the layouts produced by the notebook editor, in
// priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "explicit-used-amount",
			Applies: func(h []string) bool {
				return len(h) >= WideTableColumns && indexContaining(h, "used amount") >= 0
			},
			Resolve: func(h []string) (int, int, bool) {
				amount := indexContaining(h, "used amount")
				unit := amount + 1
				return amount, unit, unit < len(h)
			},
		},
		{
			Name: "legacy-fixed-layout",
			Applies: func(h []string) bool {
				return len(h) >= WideTableColumns
			},
			Resolve: func(h []string) (int, int, bool) {
				return legacyAmountColumn, legacyUnitColumn, true
			},
		},
		{
			Name: "unit-header",
			Applies: func(h []string) bool {
				return len(h) < WideTableColumns
			},
			Resolve: func(h []string) (int, int, bool) {
				amount := indexContaining(h, amountPatterns...)
				for i, header := range h {
					if header == "unit" {
						return amount, i, true
					}
				}
				return amount, -1, false
			},
		},
	}
}

// =============================================================================
// CANDIDATES
// =============================================================================

// Candidate is a table accepted as usage data.
type Candidate struct {
	// Index is the table's position among all tables of the document.
	Index int

	// Table is the <table> element.
	Table *goquery.Selection

	// Headers are the normalized header texts.
	Headers []string

	// HeaderFromBody is true when the header row is the first body row.
	HeaderFromBody bool

	Mapping ColumnMapping
}

// Rows returns the table's data rows in document order.
func (c Candidate) Rows() *goquery.Selection {
	rows := bodyRows(c.Table)
	if c.HeaderFromBody {
		return rows.Slice(1, rows.Length())
	}
	return rows
}

// =============================================================================
// LOCATOR
// =============================================================================

// Locator finds usage tables in a document.
type Locator struct {
	strategies []Strategy
	logger     *zap.SugaredLogger
}

// NewLocator creates a Locator. With no strategies DefaultStrategies is used.
func NewLocator(logger *zap.SugaredLogger, strategies ...Strategy) *Locator {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Locator{
		strategies: strategies,
		logger:     logging.OrNop(logger),
	}
}

// Locate returns the candidate tables of doc in document order.
func (l *Locator) Locate(doc *goquery.Document) []Candidate {
	var candidates []Candidate

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		headers, fromBody := headerRow(table)
		if len(headers) == 0 {
			return
		}

		identity := indexContaining(headers, identityPatterns...)
		amount := indexContaining(headers, amountPatterns...)
		if identity < 0 || amount < 0 {
			l.logger.Debugw("Table is not a usage table", "table", i, "headers", headers)
			return
		}

		mapping, ok := l.resolve(headers)
		if !ok {
			l.logger.Warnw("Skipping usage table without a unit column",
				"table", i, "headers", headers, "strategy", mapping.Strategy)
			return
		}
		mapping.Identity = identity

		l.logger.Debugw("Found usage table",
			"table", i,
			"strategy", mapping.Strategy,
			"identity_column", mapping.Identity,
			"amount_column", mapping.Amount,
			"unit_column", mapping.Unit,
		)

		candidates = append(candidates, Candidate{
			Index:          i,
			Table:          table,
			Headers:        headers,
			HeaderFromBody: fromBody,
			Mapping:        mapping,
		})
	})

	return candidates
}

// resolve runs the first applicable strategy.
func (l *Locator) resolve(headers []string) (ColumnMapping, bool) {
	for _, s := range l.strategies {
		if !s.Applies(headers) {
			continue
		}
		amount, unit, ok := s.Resolve(headers)
		mapping := ColumnMapping{Amount: amount, Unit: unit, Strategy: s.Name}
		if !ok || amount < 0 || unit < 0 {
			return mapping, false
		}
		return mapping, true
	}
	return ColumnMapping{}, false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// headerRow returns the normalized header texts and whether they were taken
// from the body.
func headerRow(table *goquery.Selection) ([]string, bool) {
	head := table.ChildrenFiltered("thead").ChildrenFiltered("tr").First()
	if head.Length() > 0 {
		if headers := rowLabels(head); len(headers) > 0 {
			return headers, false
		}
	}

	first := bodyRows(table).First()
	if first.Length() == 0 {
		return nil, false
	}
	return rowLabels(first), true
}

// bodyRows returns the rows of the table's own bodies, excluding rows of
// nested tables.
func bodyRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
}

func rowCells(row *goquery.Selection) *goquery.Selection {
	return row.ChildrenFiltered("td, th")
}

func rowLabels(row *goquery.Selection) []string {
	return rowCells(row).Map(func(_ int, cell *goquery.Selection) string {
		return normalize.Label(cell.Text())
	})
}

// indexContaining returns the first header containing any of the patterns,
// or -1.
func indexContaining(headers []string, patterns ...string) int {
	for i, h := range headers {
		for _, p := range patterns {
			if strings.Contains(h, p) {
				return i
			}
		}
	}
	return -1
}
