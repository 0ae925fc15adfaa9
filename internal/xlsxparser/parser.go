// =============================================================================
// Receipt Generator - XLSX Parser
// =============================================================================
//
// This module reads transaction line items from an Excel workbook. The sheet
// is laid out like the CSV export:
//
//   | date       | customer_id | customer_name | item          | quantity | unit_price | line_total |
//   |------------|-------------|---------------|---------------|----------|------------|------------|
//   | 2024/06/08 | SS1256      | Tara Arjun    | Canvas Board  | 1        | 500        | 500        |
//   | 2024/06/08 | SS1256      | Tara Arjun    | Pencils       | 12       | 15         | 180        |
//
// Cells are read as their formatted text, so a date cell comes back the way
// it is displayed in Excel. Header names are matched by the records package.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/receipt-generator/internal/config"
	"github.com/ginjaninja78/receipt-generator/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one sheet of an XLSX workbook into a table.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - settings: Sheet name (empty for the first sheet) and header row.
//
// RETURNS:
//   - The header and every non-empty data row, in sheet order.
//   - An error if the workbook or sheet cannot be read.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := settings.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	headerRow := settings.HeaderRow
	if headerRow <= 0 {
		headerRow = 1
	}

	// GetRows keeps blank rows inside the used range, so the slice index
	// is the sheet row number minus one.
	start := -1
	for i := headerRow - 1; i < len(rows); i++ {
		if !isRowEmpty(rows[i]) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheetName)
	}

	table := &types.Table{
		Headers:    cleanHeaders(rows[start]),
		SourceFile: filePath,
	}

	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, types.Row{
			Number: i + 1,
			Values: alignRow(row, len(table.Headers)),
		})
	}

	return table, nil
}

// Sheets lists the sheet names of a workbook in order.
func Sheets(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// alignRow trims each value and pads or cuts the row to width cells.
func alignRow(row []string, width int) []string {
	values := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		values[i] = strings.TrimSpace(row[i])
	}
	return values
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
