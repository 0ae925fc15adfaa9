package records

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/types"
)

// =============================================================================
// YAML DOCUMENTS
// =============================================================================
//
// A YAML input holds either a single transaction:
//
//   date: 2024/06/08
//   customer_id: SS1256
//   customer_name: Tara Arjun
//   items:
//     - name: Canvas Board
//       quantity: 1
//       unit_price: 500
//       line_total: 500
//   total: 500
//
// or a list of them under "transactions:". Several documents separated by
// "---" are read in order. line_total and total may be omitted; they default
// to quantity * unit_price and the sum of line totals.

type document struct {
	Transactions []recordDoc `yaml:"transactions"`
	recordDoc    `yaml:",inline"`
}

type recordDoc struct {
	Date         string    `yaml:"date"`
	CustomerID   string    `yaml:"customer_id"`
	CustomerName string    `yaml:"customer_name"`
	Items        []itemDoc `yaml:"items"`
	Total        *amount   `yaml:"total"`
}

type itemDoc struct {
	Name      string  `yaml:"name"`
	Quantity  int     `yaml:"quantity"`
	UnitPrice amount  `yaml:"unit_price"`
	LineTotal *amount `yaml:"line_total"`
}

func (r recordDoc) empty() bool {
	return r.Date == "" && r.CustomerID == "" && r.CustomerName == "" && len(r.Items) == 0 && r.Total == nil
}

// amount decodes a scalar through currency.ParseAmount, so "₹500", "1,250.50"
// and 500 are all accepted and ".nan" is rejected.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	d, err := currency.ParseAmount(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	a.Decimal = d
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// LoadYAML reads every transaction in a YAML file.
func LoadYAML(path string) ([]types.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return DecodeYAML(f, path)
}

// DecodeYAML reads every transaction from r. name is used as the record
// source in error reports.
func DecodeYAML(r io.Reader, name string) ([]types.TransactionRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var docs []recordDoc
	for {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(name), err)
		}

		docs = append(docs, doc.Transactions...)
		if !doc.recordDoc.empty() {
			docs = append(docs, doc.recordDoc)
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: no transactions found", name)
	}

	transactions := make([]types.TransactionRecord, len(docs))
	for i, doc := range docs {
		transactions[i] = doc.toRecord(name, i+1)
	}
	return transactions, nil
}

func (r recordDoc) toRecord(file string, index int) types.TransactionRecord {
	rec := types.TransactionRecord{
		Date:         r.Date,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		Items:        make([]types.LineItem, len(r.Items)),
		Source:       types.Source{File: file, Index: index},
	}

	for i, it := range r.Items {
		item := types.LineItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.Decimal,
		}
		if it.LineTotal != nil {
			item.LineTotal = it.LineTotal.Decimal
		} else {
			item.LineTotal = item.ExpectedTotal()
		}
		rec.Items[i] = item
	}

	if r.Total != nil {
		rec.Total = r.Total.Decimal
	} else {
		rec.Total = rec.SumOfLineTotals()
	}
	return rec
}
