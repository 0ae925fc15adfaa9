package csvparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/receipt-generator/internal/config"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_Basic(t *testing.T) {
	path := writeCSV(t, "date,customer_id,item,quantity\n"+
		"2024/06/08,SS1256,Canvas Board,1\n"+
		"\n"+
		"2024/06/08, SS1256 ,\"Paints, acrylic\",2\n")

	table, err := Parse(path, config.CSVSettings{})
	require.NoError(t, err)

	assert.Equal(t, path, table.SourceFile)
	assert.Equal(t, []string{"date", "customer_id", "item", "quantity"}, table.Headers)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 2, table.Rows[0].Number)
	assert.Equal(t, []string{"2024/06/08", "SS1256", "Canvas Board", "1"}, table.Rows[0].Values)

	assert.Equal(t, 4, table.Rows[1].Number)
	assert.Equal(t, "SS1256", table.Rows[1].Values[1])
	assert.Equal(t, "Paints, acrylic", table.Rows[1].Values[2])
}

func TestParse_HeaderRowAndDelimiter(t *testing.T) {
	path := writeCSV(t, "Star Stationeries export\n"+
		"Item|Qty|\n"+
		"Pencils|12\n"+
		"Eraser|5|x|extra\n")

	table, err := Parse(path, config.CSVSettings{Delimiter: "pipe", HeaderRow: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Item", "Qty", "Column_3"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Pencils", "12", ""}, table.Rows[0].Values)
	assert.Equal(t, []string{"Eraser", "5", "x"}, table.Rows[1].Values)
	assert.Equal(t, 4, table.Rows[1].Number)

	col, ok := table.Column("qty")
	require.True(t, ok)
	assert.Equal(t, "12", table.Rows[0].Value(col))
}

func TestParse_ByteOrderMark(t *testing.T) {
	path := writeCSV(t, "\ufeffdate,item\n2024/06/08,Pencils\n")

	table, err := Parse(path, config.CSVSettings{})
	require.NoError(t, err)
	assert.Equal(t, "date", table.Headers[0])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), config.CSVSettings{})
	assert.Error(t, err)

	_, err = Parse(writeCSV(t, ""), config.CSVSettings{})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Parse(writeCSV(t, "a,b\n"), config.CSVSettings{Delimiter: "ab"})
	assert.Error(t, err)
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := Parse(writeCSV(t, "date,item\n"), config.CSVSettings{})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestStreamingParser(t *testing.T) {
	parser, err := NewStreamingParser(writeCSV(t, "a\tb\n1\t2\n3\t4\n"), config.CSVSettings{Delimiter: "tab"})
	require.NoError(t, err)
	defer parser.Close()

	var numbers []int
	for parser.Next() {
		numbers = append(numbers, parser.Row().Number)
	}
	require.NoError(t, parser.Err())
	assert.Equal(t, []int{2, 3}, numbers)
	assert.Equal(t, []string{"a", "b"}, parser.Headers())
}
