package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// Table prints column-aligned rows under a header and a dash divider. Nothing
// is printed for a table without rows.
type Table struct {
	w       *tabwriter.Writer
	headers []string
	prefix  string
	limits  map[int]int
	rows    int
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:       tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// WithPrefix sets a string prepended to every line.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithLimit truncates cells of column col to width runes.
func (t *Table) WithLimit(col, width int) *Table {
	if t.limits == nil {
		t.limits = make(map[int]int)
	}
	t.limits[col] = width
	return t
}

// Row adds a row. Values are formatted with fmt.Sprint.
func (t *Table) Row(values ...any) {
	if t.rows == 0 {
		t.line(t.headers)
		dividers := make([]string, len(t.headers))
		for i, h := range t.headers {
			dividers[i] = strings.Repeat("-", utf8.RuneCountInString(h))
		}
		t.line(dividers)
	}
	t.rows++

	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = truncate(fmt.Sprint(v), t.limits[i])
	}
	t.line(cells)
}

// Rows returns the number of rows added.
func (t *Table) Rows() int { return t.rows }

// Flush writes the table.
func (t *Table) Flush() {
	if t.rows > 0 {
		t.w.Flush()
	}
}

func (t *Table) line(cells []string) {
	fmt.Fprintln(t.w, t.prefix+strings.Join(cells, "\t"))
}

// truncate shortens s to width runes, ending in "...". A width of zero or
// less leaves s unchanged.
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 3 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-3]) + "..."
}
