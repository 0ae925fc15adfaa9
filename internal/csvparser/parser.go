// =============================================================================
// Receipt Generator - CSV Parser Module
// =============================================================================
//
// This module reads transaction line items exported as CSV. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - A header row that is not the first line (title rows above it)
//   - UTF-8 and UTF-16 files with a byte order mark
//   - Quoted fields with embedded delimiters and newlines
//
// The parser only produces a types.Table. Mapping columns onto transactions
// is done by the records package so CSV and XLSX inputs share one path.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/receipt-generator/internal/config"
	"github.com/ginjaninja78/receipt-generator/internal/types"
)

// ErrEmptyFile is returned when no header row could be read.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and header row.
//
// RETURNS:
//   - The header and every non-empty data row, in file order.
//   - An error if the file cannot be read or has no header row.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	parser, err := NewStreamingParser(filePath, settings)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	table := &types.Table{
		Headers:    parser.Headers(),
		SourceFile: filePath,
	}
	for parser.Next() {
		table.Rows = append(table.Rows, parser.Row())
	}
	if err := parser.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

// configureReader applies the delimiter and the lenient quoting rules used
// by spreadsheet exports.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	comma, err := settings.Comma()
	if err != nil {
		return err
	}
	reader.Comma = comma

	// Rows may be ragged; missing cells read as "".
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return nil
}

// cleanHeaders trims header values and names empty ones by position.
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

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads a CSV file one row at a time.
//
// USAGE:
//   parser, err := NewStreamingParser(filePath, settings)
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   for parser.Next() {
//       row := parser.Row()
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
type StreamingParser struct {
	file    *os.File
	reader  *csv.Reader
	headers []string
	current types.Row
	err     error
}

// NewStreamingParser opens filePath and reads up to and including the header
// row. A byte order mark selects UTF-8 or UTF-16 decoding; without one the
// file is read as UTF-8.
func NewStreamingParser(filePath string, settings config.CSVSettings) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	decoded := transform.NewReader(bufio.NewReader(file), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	if err := configureReader(reader, settings); err != nil {
		file.Close()
		return nil, err
	}

	parser := &StreamingParser{file: file, reader: reader}

	if err := parser.readHeaders(settings.HeaderRow); err != nil {
		file.Close()
		return nil, err
	}

	return parser, nil
}

// readHeaders skips the rows above headerRow and reads the header itself.
// Blank lines are not counted by encoding/csv, so the position is taken
// from the reader rather than by counting records.
func (p *StreamingParser) readHeaders(headerRow int) error {
	if headerRow <= 0 {
		headerRow = 1
	}

	for {
		row, err := p.reader.Read()
		if err == io.EOF {
			return ErrEmptyFile
		}
		if err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}

		line, _ := p.reader.FieldPos(0)
		if line < headerRow || isRowEmpty(row) {
			continue
		}

		p.headers = cleanHeaders(row)
		return nil
	}
}

// Next advances to the next non-empty row. Returns false at the end of the
// file or on error.
func (p *StreamingParser) Next() bool {
	if p.err != nil {
		return false
	}

	for {
		row, err := p.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("failed to read CSV: %w", err)
			return false
		}

		if isRowEmpty(row) {
			continue
		}

		line, _ := p.reader.FieldPos(0)
		p.current = types.Row{Number: line, Values: alignRow(row, len(p.headers))}
		return true
	}
}

// Row returns the current row.
func (p *StreamingParser) Row() types.Row {
	return p.current
}

// Headers returns the parsed headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file.
func (p *StreamingParser) Close() error {
	return p.file.Close()
}
