// =============================================================================
// Sample Reducer - Inventory Workbook
// =============================================================================
//
// Inventory can be seeded from, and dumped to, an XLSX workbook. Only the
// first sheet is read.
//
// WORKBOOK STRUCTURE (default columns):
//
//   | Column A | Column B | Column C      | Column D | Column E |
//   |----------|----------|---------------|----------|----------|
//   | ID       | Name     | Quantity Type | Amount   | Unit     |
//   | 42       | Glucose  | Volume        | 500      | ml       |
//   | 7        | NaCl     | Mass          | 1        | kg       |
//   | 9        | Flasks   | Number        | 24       | pcs      |
//
// Column positions are configurable via WorkbookColumns.
//
// =============================================================================

package inventory

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

// WorkbookHeader is the header row written by ExportWorkbook.
var WorkbookHeader = []string{"ID", "Name", "Quantity Type", "Amount", "Unit"}

const exportSheet = "Inventory"

// WorkbookColumns defines the column positions (zero-based) of the fields.
type WorkbookColumns struct {
	ID           int
	Name         int
	QuantityType int
	Amount       int
	Unit         int

	// DataStartRow is the zero-based index of the first data row.
	DataStartRow int
}

// DefaultWorkbookColumns returns the layout written by ExportWorkbook.
func DefaultWorkbookColumns() WorkbookColumns {
	return WorkbookColumns{
		ID:           0,
		Name:         1,
		QuantityType: 2,
		Amount:       3,
		Unit:         4,
		DataStartRow: 1,
	}
}

// LoadWorkbook reads inventory records using the default columns.
func LoadWorkbook(path string) ([]Record, error) {
	return LoadWorkbookWithColumns(path, DefaultWorkbookColumns())
}

// LoadWorkbookWithColumns reads inventory records from the first sheet.
//
// RETURNS:
//   - The records in sheet order. Blank rows are skipped.
//   - An error naming the (one-based) row for malformed or duplicate rows.
func LoadWorkbookWithColumns(path string, columns WorkbookColumns) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rows")
	}

	var records []Record
	seen := make(map[string]int)
	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		record, err := parseRecord(row, columns)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing row %d", i+1)
		}
		if first, dup := seen[record.Identity]; dup {
			return nil, errors.Newf("row %d: sample %s already defined on row %d", i+1, record.Identity, first)
		}
		seen[record.Identity] = i + 1
		records = append(records, record)
	}

	return records, nil
}

// ExportWorkbook writes records to a new workbook at path.
func ExportWorkbook(path string, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return errors.Wrap(err, "failed to name sheet")
	}

	header := make([]any, len(WorkbookHeader))
	for i, h := range WorkbookHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to address row")
		}
		row := []any{r.Identity, r.Name, r.Kind.String(), r.Available, r.UnitName}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write sample %s", r.Identity)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func parseRecord(row []string, columns WorkbookColumns) (Record, error) {
	r := Record{
		Identity: cellValue(row, columns.ID),
		Name:     cellValue(row, columns.Name),
		UnitName: cellValue(row, columns.Unit),
	}
	if r.Identity == "" {
		return Record{}, errors.New("missing ID")
	}

	kind, err := units.ParseKind(cellValue(row, columns.QuantityType))
	if err != nil {
		return Record{}, err
	}
	r.Kind = kind

	raw := cellValue(row, columns.Amount)
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Record{}, errors.Newf("invalid amount %q", raw)
	}
	r.Available = amount

	return r, r.validate()
}

// cellValue safely gets a trimmed cell value by index.
func cellValue(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
