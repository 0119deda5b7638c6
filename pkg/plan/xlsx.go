package plan

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Table is one sheet read as header plus data rows. Short rows are padded
// to the header width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of column in the header, or -1.
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Value returns the cell of row under column, or "" when absent.
func (t *Table) Value(row []string, column string) string {
	i := t.Index(column)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ReadTable reads sheet of the workbook at path. An empty sheet name reads
// the first sheet.
func ReadTable(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets: %w", path, util.ErrNotFound)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	t := &Table{}
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = rows[0]
	for _, row := range rows[1:] {
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func loadWorkbook(path string, opts Options) ([]string, error) {
	t, err := ReadTable(path, opts.Sheet)
	if err != nil {
		return nil, err
	}

	var out []string
	if col := t.Index(opts.column()); col >= 0 {
		for _, row := range t.Rows {
			out = append(out, util.ExtractIPv4s(row[col])...)
		}
		return out, nil
	}

	for _, row := range append([][]string{t.Header}, t.Rows...) {
		for _, cell := range row {
			out = append(out, util.ExtractIPv4s(cell)...)
		}
	}
	return out, nil
}
