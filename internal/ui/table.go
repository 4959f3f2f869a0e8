package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table renders package rows in aligned columns. Only the last column may be
// painted, since escape codes elsewhere would skew tabwriter's widths.
type Table struct {
	w     *tabwriter.Writer
	width int
	rows  int
}

// NewTable creates a table with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return &Table{w: tw, width: len(headers)}
}

// Row appends a row. Missing trailing cells are left empty and extra cells
// are dropped.
func (t *Table) Row(values ...any) {
	parts := make([]string, t.width)
	for i := 0; i < t.width && i < len(values); i++ {
		parts[i] = fmt.Sprint(values[i])
	}
	t.rows++
	_, _ = fmt.Fprintln(t.w, strings.Join(parts, "\t"))
}

// Len returns the number of rows added.
func (t *Table) Len() int { return t.rows }

// Flush writes the buffered output.
func (t *Table) Flush() error {
	return t.w.Flush()
}
