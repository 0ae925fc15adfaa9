// =============================================================================
// Receipt Generator - Record Loader
// =============================================================================
//
// This module turns input files into TransactionRecords.
//
// SUPPORTED INPUTS:
//   - .yaml / .yml : one record, or a "transactions:" list (see yaml.go)
//   - .csv         : one line item per row
//   - .xlsx        : one line item per row on the configured sheet
//
// GROUPING:
//   Tabular rows with the same date and customer id form one transaction.
//   Transactions keep the order in which their first row appears, and items
//   keep file order within a transaction.
//
// =============================================================================

package records

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/receipt-generator/internal/config"
	"github.com/ginjaninja78/receipt-generator/internal/csvparser"
	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/xlsxparser"
)

// Extensions lists the input file extensions Load understands.
var Extensions = []string{".yaml", ".yml", ".csv", ".xlsx"}

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// =============================================================================
// ERRORS
// =============================================================================

// ParseError reports a cell or field that could not be converted.
type ParseError struct {
	File   string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s:%d: column %q: cannot parse %q: %v", e.File, e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: field %q: cannot parse %q: %v", e.File, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// LOADING
// =============================================================================

// Supported reports whether Load understands the file's extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads every transaction in the file at path.
//
// PARAMETERS:
//   - path: The input file. The extension selects the decoder.
//   - settings: Delimiter, header row, sheet and column names for tabular
//     inputs. Ignored for YAML.
//
// RETURNS:
//   - The records in file order. Records are not validated here.
//   - A *ParseError for unconvertible values, or a wrapped read error.
func Load(path string, settings config.CSVSettings) ([]types.TransactionRecord, error) {
	var (
		table *types.Table
		err   error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".csv":
		table, err = csvparser.Parse(path, settings)
	case ".xlsx":
		table, err = xlsxparser.Parse(path, settings)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return FromTable(table, settings.Columns)
}

// =============================================================================
// TABLE GROUPING
// =============================================================================

// columnIndexes holds the resolved position of every mapped column.
type columnIndexes struct {
	date, customerID, customerName int
	item, quantity, unitPrice      int
	lineTotal                      int
}

// resolveColumns finds each mapped header in the table. The line total column
// is optional; every other column must be present.
func resolveColumns(table *types.Table, mapping config.ColumnMapping) (columnIndexes, error) {
	var idx columnIndexes
	var missing []string

	lookup := func(name string, required bool) int {
		col, ok := table.Column(name)
		if !ok && required {
			missing = append(missing, name)
		}
		return col
	}

	idx.date = lookup(mapping.Date, true)
	idx.customerID = lookup(mapping.CustomerID, true)
	idx.customerName = lookup(mapping.CustomerName, true)
	idx.item = lookup(mapping.Item, true)
	idx.quantity = lookup(mapping.Quantity, true)
	idx.unitPrice = lookup(mapping.UnitPrice, true)
	idx.lineTotal = lookup(mapping.LineTotal, false)

	if len(missing) > 0 {
		return idx, fmt.Errorf("%s: missing columns: %s", table.SourceFile, strings.Join(missing, ", "))
	}
	return idx, nil
}

// FromTable groups table rows into transactions keyed by date and customer
// id, in order of first occurrence.
//
// A row without a line total gets quantity * unit price. The grand total of
// each transaction is the sum of its line totals. The customer name is taken
// from the first row of the group.
func FromTable(table *types.Table, mapping config.ColumnMapping) ([]types.TransactionRecord, error) {
	idx, err := resolveColumns(table, mapping)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]int)
	var transactions []types.TransactionRecord

	for _, row := range table.Rows {
		item, err := lineItemFromRow(table.SourceFile, row, idx, mapping)
		if err != nil {
			return nil, err
		}

		date := row.Value(idx.date)
		customerID := row.Value(idx.customerID)
		key := date + "\x00" + customerID

		pos, exists := groups[key]
		if !exists {
			pos = len(transactions)
			groups[key] = pos
			transactions = append(transactions, types.TransactionRecord{
				Date:         date,
				CustomerID:   customerID,
				CustomerName: row.Value(idx.customerName),
				Source:       types.Source{File: table.SourceFile, Index: pos + 1},
			})
		}

		transactions[pos].Items = append(transactions[pos].Items, item)
	}

	for i := range transactions {
		transactions[i].Total = transactions[i].SumOfLineTotals()
	}

	return transactions, nil
}

func lineItemFromRow(file string, row types.Row, idx columnIndexes, mapping config.ColumnMapping) (types.LineItem, error) {
	item := types.LineItem{
		Name: row.Value(idx.item),
		Row:  row.Number,
	}

	fail := func(column, value string, err error) (types.LineItem, error) {
		return types.LineItem{}, &ParseError{File: file, Row: row.Number, Column: column, Value: value, Err: err}
	}

	raw := row.Value(idx.quantity)
	qty, err := parseQuantity(raw)
	if err != nil {
		return fail(mapping.Quantity, raw, err)
	}
	item.Quantity = qty

	raw = row.Value(idx.unitPrice)
	if item.UnitPrice, err = currency.ParseAmount(raw); err != nil {
		return fail(mapping.UnitPrice, raw, err)
	}

	raw = row.Value(idx.lineTotal)
	if strings.TrimSpace(raw) == "" {
		item.LineTotal = item.ExpectedTotal()
		return item, nil
	}
	if item.LineTotal, err = currency.ParseAmount(raw); err != nil {
		return fail(mapping.LineTotal, raw, err)
	}

	return item, nil
}

// parseQuantity accepts whole numbers, including the "3.0" form spreadsheet
// exports sometimes produce. An empty cell is zero.
func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a whole number")
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number")
	}
	return int(f), nil
}
