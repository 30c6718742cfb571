// =============================================================================
// Sample Reducer - Row Extractor
// =============================================================================
//
// Reads (identity, name, amount, unit) text from the data rows of a
// candidate table. The editor renders sample links and protocol variables in
// a few different nestings, so identity and value extraction each run an
// ordered list of strategies and take the first non-empty result.
//
// Known sample cell shapes:
//   <a onclick="Experiment.Section.Sample.view(12345)"><span class="protVar">Name</span></a>
//   <span class="protVar"><span><a onclick="Experiment.Section.Sample.view(12345)">Name</a></span></span>
//
// =============================================================================

package htmlparser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sample-reducer/internal/logging"
	"github.com/ginjaninja78/sample-reducer/internal/types"
)

const sampleAnchor = `a[onclick*="Experiment.Section.Sample.view"]`

var sampleViewCall = regexp.MustCompile(`Experiment\.Section\.Sample\.view\((\d+)\)`)

// =============================================================================
// EXTRACTION STRATEGIES
// =============================================================================

// IdentityStrategy reads a sample reference from an identity cell. It returns
// empty strings when the cell does not have its shape.
type IdentityStrategy struct {
	Name    string
	Extract func(cell *goquery.Selection) (identity, label string)
}

// ValueStrategy reads a text value from an amount or unit cell.
type ValueStrategy struct {
	Name    string
	Extract func(cell *goquery.Selection) string
}

// DefaultIdentityStrategies returns the sample link shapes in priority order.
func DefaultIdentityStrategies() []IdentityStrategy {
	return []IdentityStrategy{
		{
			Name: "anchor-wraps-label",
			Extract: func(cell *goquery.Selection) (string, string) {
				anchor := cell.Find(sampleAnchor).First()
				if anchor.Length() == 0 {
					return "", ""
				}
				label := cellText(anchor)
				if span := anchor.Find("span").First(); span.Length() > 0 {
					label = cellText(span)
				}
				return sampleID(anchor), label
			},
		},
		{
			Name: "label-wraps-anchor",
			Extract: func(cell *goquery.Selection) (string, string) {
				anchor := cell.Find("span " + sampleAnchor).First()
				if anchor.Length() == 0 {
					return "", ""
				}
				return sampleID(anchor), cellText(anchor)
			},
		},
	}
}

// DefaultValueStrategies returns the variable markup shapes in priority
// order, ending with the raw cell text.
func DefaultValueStrategies() []ValueStrategy {
	return []ValueStrategy{
		{Name: "nested-variable", Extract: firstText("span.protVar > span")},
		{Name: "variable", Extract: firstText("span.protVar")},
		{Name: "any-span", Extract: firstText("span")},
		{Name: "cell-text", Extract: cellText},
	}
}

func firstText(selector string) func(*goquery.Selection) string {
	return func(cell *goquery.Selection) string {
		match := cell.Find(selector).First()
		if match.Length() == 0 {
			return ""
		}
		return cellText(match)
	}
}

func sampleID(anchor *goquery.Selection) string {
	onclick, _ := anchor.Attr("onclick")
	m := sampleViewCall.FindStringSubmatch(onclick)
	if m == nil {
		return ""
	}
	return m[1]
}

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor turns candidate tables into raw rows.
type Extractor struct {
	identity []IdentityStrategy
	values   []ValueStrategy
	logger   *zap.SugaredLogger
}

// NewExtractor creates an Extractor with the default strategies.
func NewExtractor(logger *zap.SugaredLogger) *Extractor {
	return &Extractor{
		identity: DefaultIdentityStrategies(),
		values:   DefaultValueStrategies(),
		logger:   logging.OrNop(logger),
	}
}

// Extract returns one RawRow per usable data row of c, and the number of
// rows that were dropped.
func (e *Extractor) Extract(c Candidate) ([]types.RawRow, int) {
	var (
		rows    []types.RawRow
		dropped int
	)

	c.Rows().Each(func(i int, row *goquery.Selection) {
		cells := rowCells(row)
		if cells.Length() <= c.Mapping.maxIndex() {
			e.logger.Debugw("Skipping short row", "table", c.Index, "row", i, "cells", cells.Length())
			dropped++
			return
		}

		identity, name := e.identify(cells.Eq(c.Mapping.Identity))
		if identity == "" || name == "" {
			// Spacer and note rows carry no sample link.
			e.logger.Debugw("Skipping row without sample reference", "table", c.Index, "row", i)
			dropped++
			return
		}

		amount := e.value(cells.Eq(c.Mapping.Amount))
		unit := e.value(cells.Eq(c.Mapping.Unit))
		if amount == "" || unit == "" {
			e.logger.Warnw("Skipping sample row with missing amount or unit",
				"table", c.Index, "row", i,
				"sample", name, "id", identity,
				"amount", amount, "unit", unit,
			)
			dropped++
			return
		}

		rows = append(rows, types.RawRow{
			Identity:    identity,
			DisplayName: name,
			RawAmount:   amount,
			RawUnit:     unit,
			Table:       c.Index,
			Row:         i,
		})
	})

	return rows, dropped
}

// identify runs the identity strategies until one yields both parts.
func (e *Extractor) identify(cell *goquery.Selection) (string, string) {
	for _, s := range e.identity {
		id, label := s.Extract(cell)
		if id != "" && label != "" {
			return id, label
		}
	}
	return "", ""
}

// value runs the value strategies until one yields text.
func (e *Extractor) value(cell *goquery.Selection) string {
	for _, s := range e.values {
		if v := strings.TrimSpace(s.Extract(cell)); v != "" {
			return v
		}
	}
	return ""
}
