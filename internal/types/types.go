// =============================================================================
// Receipt Generator - Shared Types
// =============================================================================
//
// This package contains the transaction model shared by the input parsers,
// the validator, the layout engine and the renderer. Keeping it here avoids
// import cycles between those packages.
//
// OWNERSHIP:
//   A TransactionRecord is read-only input owned by the caller. Nothing in the
//   render path modifies it.
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// TransactionRecord is one customer transaction to be printed as a receipt.
type TransactionRecord struct {
	// Date is printed verbatim and also names the output artifact.
	// Example: "2024/06/08"
	Date string `validate:"required,notblank"`

	// CustomerID is the store's customer identifier, e.g. "SS1256".
	CustomerID string `validate:"required,notblank"`

	// CustomerName is printed verbatim; long names are not truncated.
	CustomerName string `validate:"required,notblank"`

	// Items are printed in this order, one table row each.
	Items []LineItem `validate:"dive"`

	// Total is the grand total printed under the table. It is expected to
	// equal the sum of the line totals but is not recomputed.
	Total decimal.Decimal `validate:"gte=0"`

	// Source identifies where the record was read from, for error reporting.
	// It is not part of the printed receipt.
	Source Source `validate:"-"`
}

// LineItem is one purchased item.
type LineItem struct {
	// Name is printed left-aligned in the first column.
	Name string `validate:"required"`

	// Quantity is the number of units purchased.
	Quantity int `validate:"gte=0"`

	// UnitPrice is the price of one unit.
	UnitPrice decimal.Decimal `validate:"gte=0"`

	// LineTotal is the amount charged for this line. Conceptually
	// Quantity * UnitPrice, but trusted as given.
	LineTotal decimal.Decimal `validate:"gte=0"`

	// Row is the 1-indexed row of the source file this item came from, or 0
	// when unknown.
	Row int `validate:"-"`
}

// Source describes the origin of a record.
type Source struct {
	// File is the path of the input file.
	File string

	// Index is the 1-indexed position of the record within the file.
	Index int
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// ItemCount returns the number of line items.
func (t *TransactionRecord) ItemCount() int {
	return len(t.Items)
}

// SumOfLineTotals adds up every line total.
func (t *TransactionRecord) SumOfLineTotals() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range t.Items {
		sum = sum.Add(item.LineTotal)
	}
	return sum
}

// ExpectedTotal returns Quantity * UnitPrice for the item.
func (li LineItem) ExpectedTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
