package types

import "strings"

// =============================================================================
// TABULAR INPUT
// =============================================================================

// Table is a header row plus data rows, as read from a CSV file or an XLSX
// sheet. Parsers fill it; the record builder turns it into transactions.
type Table struct {
	// Headers are the cleaned column names.
	Headers []string

	// Rows are the non-empty data rows in file order.
	Rows []Row

	// SourceFile is the path the table was read from.
	SourceFile string
}

// Row is one data row. Values is aligned with Table.Headers; missing trailing
// cells are empty strings.
type Row struct {
	// Number is the 1-indexed line or sheet row the data came from.
	Number int

	Values []string
}

// Column returns the index of the header matching name, ignoring case,
// surrounding spaces, and the difference between spaces and underscores.
func (t *Table) Column(name string) (int, bool) {
	want := normalizeHeader(name)
	for i, h := range t.Headers {
		if normalizeHeader(h) == want {
			return i, true
		}
	}
	return -1, false
}

// Value returns the cell in column col, or "" when col is out of range.
func (r Row) Value(col int) string {
	if col < 0 || col >= len(r.Values) {
		return ""
	}
	return r.Values[col]
}

func normalizeHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
