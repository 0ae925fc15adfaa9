package records

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/receipt-generator/internal/config"
	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/validation"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func defaultSettings() config.CSVSettings {
	return config.DefaultMainConfig().CSV
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// TABULAR
// =============================================================================

const itemsCSV = `date,customer_id,customer_name,item,quantity,unit_price,line_total
2024/06/08,SS1256,Tara Arjun,Colouring Books,3,200,600
2024/06/09,SS2001,Ravi Kumar,Pencils,12,15,
2024/06/08,SS1256,Tara Arjun,Canvas Board,1,₹500,500.00
`

func TestLoad_CSVGroupsByDateAndCustomer(t *testing.T) {
	path := writeInput(t, "items.csv", itemsCSV)

	recs, err := Load(path, defaultSettings())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "2024/06/08", first.Date)
	assert.Equal(t, "SS1256", first.CustomerID)
	assert.Equal(t, "Tara Arjun", first.CustomerName)
	assert.Equal(t, types.Source{File: path, Index: 1}, first.Source)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Colouring Books", first.Items[0].Name)
	assert.Equal(t, 2, first.Items[0].Row)
	assert.Equal(t, "Canvas Board", first.Items[1].Name)
	assert.Equal(t, 4, first.Items[1].Row)
	assert.True(t, dec("1100").Equal(first.Total))

	second := recs[1]
	assert.Equal(t, "SS2001", second.CustomerID)
	assert.Equal(t, 2, second.Source.Index)
	require.Len(t, second.Items, 1)
	assert.True(t, dec("180").Equal(second.Items[0].LineTotal), "empty line total is computed")
	assert.True(t, dec("180").Equal(second.Total))
}

func TestLoad_CSVColumnMapping(t *testing.T) {
	path := writeInput(t, "items.csv", "Day;Customer ID;Customer Name;Product;Qty;Price\n"+
		"2024/06/08;SS1256;Tara Arjun;Eraser;5;5\n")

	settings := defaultSettings()
	settings.Delimiter = ";"
	settings.Columns = config.ColumnMapping{
		Date: "day", CustomerID: "customer_id", CustomerName: "customer name",
		Item: "product", Quantity: "qty", UnitPrice: "price", LineTotal: "line_total",
	}

	recs, err := Load(path, settings)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Eraser", recs[0].Items[0].Name)
	assert.True(t, dec("25").Equal(recs[0].Items[0].LineTotal))
}

func TestLoad_CSVErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		_, err := Load(writeInput(t, "a.csv", "date,item\n2024/06/08,x\n"), defaultSettings())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "customer_id")
		assert.Contains(t, err.Error(), "unit_price")
	})

	t.Run("bad quantity", func(t *testing.T) {
		content := strings.Replace(itemsCSV, ",3,200,", ",three,200,", 1)
		_, err := Load(writeInput(t, "b.csv", content), defaultSettings())

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 2, perr.Row)
		assert.Equal(t, "quantity", perr.Column)
		assert.Equal(t, "three", perr.Value)
	})

	t.Run("non-finite price", func(t *testing.T) {
		content := strings.Replace(itemsCSV, ",3,200,", ",3,NaN,", 1)
		_, err := Load(writeInput(t, "c.csv", content), defaultSettings())

		var ferr *currency.FormatError
		assert.True(t, errors.As(err, &ferr))
	})
}

func TestLoad_CSVNegativeAfterSymbolIsRejected(t *testing.T) {
	path := writeInput(t, "refund.csv", "date,customer_id,customer_name,item,quantity,unit_price,line_total\n"+
		"2024/06/08,SS1256,Tara Arjun,Eraser,1,₹-5.00,\n")

	recs, err := Load(path, defaultSettings())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	item := recs[0].Items[0]
	assert.True(t, dec("-5").Equal(item.UnitPrice), "got %s", item.UnitPrice)
	assert.True(t, dec("-5").Equal(item.LineTotal), "got %s", item.LineTotal)

	_, err = validation.NewValidator(validation.Options{}).Check(&recs[0])

	var invalid *validation.InvalidRecordError
	require.True(t, errors.As(err, &invalid))

	fields := make(map[string]int)
	for _, p := range invalid.Problems {
		if p.IsFatal() {
			fields[p.Field] = p.RowNumber
		}
	}
	require.Contains(t, fields, "Items[0].UnitPrice")
	assert.Equal(t, 2, fields["Items[0].UnitPrice"])
	assert.Contains(t, fields, "Total")
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"date", "customer_id", "customer_name", "item", "quantity", "unit_price", "line_total"},
		{"2024/06/08", "SS1256", "Tara Arjun", "Palettes", 2, 50, 100},
		{"2024/06/08", "SS1256", "Tara Arjun", "Paper Clips", 10, 20, 200},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "items.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := Load(path, defaultSettings())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Len(t, recs[0].Items, 2)
	assert.True(t, dec("300").Equal(recs[0].Total))
	assert.Equal(t, 3, recs[0].Items[1].Row)
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load(writeInput(t, "items.json", "{}"), defaultSettings())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.True(t, Supported("a/B.YML"))
	assert.False(t, Supported("a/b.txt"))
}

func TestParseQuantity(t *testing.T) {
	for in, want := range map[string]int{"": 0, "3": 3, " 12 ": 12, "4.0": 4} {
		got, err := parseQuantity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"1.5", "x", "NaN"} {
		_, err := parseQuantity(bad)
		assert.Error(t, err, bad)
	}
}

// =============================================================================
// YAML
// =============================================================================

func TestLoadYAML_SingleRecord(t *testing.T) {
	path := writeInput(t, "receipt.yaml", `
date: 2024/06/08
customer_id: SS1256
customer_name: Tara Arjun
items:
  - name: Colouring Books
    quantity: 3
    unit_price: 200
    line_total: 600
  - name: Canvas Board
    quantity: 1
    unit_price: "₹500.00"
total: "1,100"
`)

	recs, err := Load(path, defaultSettings())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "2024/06/08", rec.Date)
	assert.Equal(t, "Tara Arjun", rec.CustomerName)
	require.Len(t, rec.Items, 2)
	assert.True(t, dec("500").Equal(rec.Items[1].LineTotal))
	assert.True(t, dec("1100").Equal(rec.Total))
	assert.Equal(t, types.Source{File: path, Index: 1}, rec.Source)
}

func TestDecodeYAML_ListAndStream(t *testing.T) {
	input := `
transactions:
  - date: 2024/06/08
    customer_id: SS1256
    customer_name: Tara Arjun
    items:
      - {name: Eraser, quantity: 5, unit_price: 5}
  - date: 2024/06/09
    customer_id: SS2001
    customer_name: Ravi Kumar
    items: []
---
date: 2024/06/10
customer_id: SS3000
customer_name: Meera Nair
items:
  - {name: Sharpener, quantity: 3, unit_price: 10, line_total: 30}
total: 35
`

	recs, err := DecodeYAML(strings.NewReader(input), "batch.yaml")
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.True(t, dec("25").Equal(recs[0].Total))
	assert.Empty(t, recs[1].Items)
	assert.True(t, recs[1].Total.IsZero())
	assert.True(t, dec("35").Equal(recs[2].Total), "given total is kept")
	assert.Equal(t, 3, recs[2].Source.Index)
}

func TestDecodeYAML_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"unknown field": "date: x\ncustomer: y\n",
		"nan amount":    "date: x\nitems:\n  - {name: a, quantity: 1, unit_price: .nan}\n",
		"list amount":   "date: x\ntotal: [1, 2]\n",
		"bad quantity":  "date: x\nitems:\n  - {name: a, quantity: many, unit_price: 1}\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeYAML(strings.NewReader(input), "bad.yaml")
			assert.Error(t, err)
		})
	}
}
