// =============================================================================
// Receipt Generator - Configuration Module
// =============================================================================
//
// This module loads and validates the main application configuration.
//
// FILE FORMATS:
//   The format is chosen by extension:
//     - .yaml / .yml : gopkg.in/yaml.v3
//     - .toml        : github.com/pelletier/go-toml/v2
//
// LOADING ORDER:
//   1. Start from the boolean defaults.
//   2. Decode the file over it, so keys that are absent keep their defaults.
//   3. applyMainConfigDefaults fills values that were explicitly left empty.
//   4. validateMainConfig rejects anything the renderer cannot honour.
//
//   A missing config file is not an error; the defaults are used.
//
// =============================================================================

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/receipt-generator/internal/layout"
	"github.com/ginjaninja78/receipt-generator/internal/logger"
	"github.com/ginjaninja78/receipt-generator/internal/pdfcanvas"
	"github.com/ginjaninja78/receipt-generator/internal/renderer"
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

// DeterministicCreationDate is stamped into every PDF when pdf.deterministic
// is set.
var DeterministicCreationDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for transaction files (*.yaml, *.yml, *.csv, *.xlsx).
	// Default: "./input"
	InputDir string `yaml:"input_dir" toml:"input_dir"`

	// OutputDir receives the rendered receipts.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// InputArchiveDir receives input files after every record in them was
	// rendered.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" toml:"input_archive_dir"`

	// LogsDir receives error logs and run summaries.
	// Default: "./logs"
	LogsDir string `yaml:"logs_dir" toml:"logs_dir"`

	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Processing ProcessingConfig `yaml:"processing" toml:"processing"`
	Receipt    ReceiptConfig    `yaml:"receipt" toml:"receipt"`
	PDF        PDFConfig        `yaml:"pdf" toml:"pdf"`
	CSV        CSVSettings      `yaml:"csv" toml:"csv"`
	History    HistoryConfig    `yaml:"history" toml:"history"`
}

// =============================================================================
// SECTIONS
// =============================================================================

// LoggingConfig mirrors logger.Config.
type LoggingConfig struct {
	// Level: "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level" toml:"level"`

	// Format: "console" or "json". Default: "console"
	Format string `yaml:"format" toml:"format"`

	// File is the log destination. Empty means stderr.
	File string `yaml:"file" toml:"file"`
}

// ProcessingConfig controls the batch pipeline.
type ProcessingConfig struct {
	// MaxConcurrency is the number of input files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// ContinueOnError keeps processing other files after one fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error" toml:"continue_on_error"`

	// StrictTotals makes line-total and grand-total mismatches fatal.
	// Default: false
	StrictTotals bool `yaml:"strict_totals" toml:"strict_totals"`

	// ArchiveInputs moves fully rendered input files to InputArchiveDir.
	// Default: true
	ArchiveInputs bool `yaml:"archive_inputs" toml:"archive_inputs"`
}

// ReceiptConfig holds the printed texts and page settings.
type ReceiptConfig struct {
	StoreName  string `yaml:"store_name" toml:"store_name"`
	Subtitle   string `yaml:"subtitle" toml:"subtitle"`
	FooterText string `yaml:"footer_text" toml:"footer_text"`

	// CurrencySymbol prefixes every amount. Default: "₹"
	CurrencySymbol string `yaml:"currency_symbol" toml:"currency_symbol"`

	// CurrencyCode is shown in the price and total column headers.
	// Default: "INR"
	CurrencyCode string `yaml:"currency_code" toml:"currency_code"`

	// FileNameFormat names the artifact.
	// Placeholders:
	//   {date}        - the record date with unsafe characters replaced by '-'
	//   {customer_id} - the customer id, sanitized the same way
	//   {uuid}        - a random UUID
	// Default: "receipt_{date}.pdf"
	FileNameFormat string `yaml:"file_name_format" toml:"file_name_format"`

	// OverflowPolicy is "draw" or "reject". Default: "draw"
	OverflowPolicy string `yaml:"overflow_policy" toml:"overflow_policy"`

	// PageSize is "Letter" or "A4". Default: "Letter"
	PageSize string `yaml:"page_size" toml:"page_size"`

	// MarginInches is the margin on all four sides. Default: 0.75
	MarginInches float64 `yaml:"margin_inches" toml:"margin_inches"`
}

// PDFConfig controls the PDF backend.
type PDFConfig struct {
	Author  string `yaml:"author" toml:"author"`
	Creator string `yaml:"creator" toml:"creator"`

	// RegularFont and BoldFont are optional TTF files. When both are set the
	// receipt is drawn with that font and any glyph (including ₹) is
	// embedded; otherwise the built-in Helvetica is used.
	RegularFont string `yaml:"regular_font" toml:"regular_font"`
	BoldFont    string `yaml:"bold_font" toml:"bold_font"`

	// GlyphFallbacks replaces characters the built-in fonts cannot show.
	// Default: {"₹": "Rs."}
	GlyphFallbacks map[string]string `yaml:"glyph_fallbacks" toml:"glyph_fallbacks"`

	// Deterministic fixes the PDF creation date so that identical input
	// produces identical bytes.
	Deterministic bool `yaml:"deterministic" toml:"deterministic"`
}

// CSVSettings describes tabular inputs (CSV and XLSX).
type CSVSettings struct {
	// Delimiter separates fields. Default: ","
	Delimiter string `yaml:"delimiter" toml:"delimiter"`

	// HeaderRow is the 1-indexed row holding column names. Default: 1
	HeaderRow int `yaml:"header_row" toml:"header_row"`

	// Sheet is the XLSX sheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet" toml:"sheet"`

	// Columns maps record fields to header names.
	Columns ColumnMapping `yaml:"columns" toml:"columns"`
}

// ColumnMapping names the input columns. Rows with the same date and
// customer id form one transaction.
type ColumnMapping struct {
	Date         string `yaml:"date" toml:"date"`
	CustomerID   string `yaml:"customer_id" toml:"customer_id"`
	CustomerName string `yaml:"customer_name" toml:"customer_name"`
	Item         string `yaml:"item" toml:"item"`
	Quantity     string `yaml:"quantity" toml:"quantity"`
	UnitPrice    string `yaml:"unit_price" toml:"unit_price"`
	LineTotal    string `yaml:"line_total" toml:"line_total"`
}

// Comma returns the delimiter rune. Besides a single character, the names
// "tab", "pipe" and "semicolon" (and a literal "\t") are accepted.
func (s CSVSettings) Comma() (rune, error) {
	switch strings.ToLower(s.Delimiter) {
	case "", ",", "comma":
		return ',', nil
	case `\t`, "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}
	r := []rune(s.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("invalid csv delimiter %q", s.Delimiter)
	}
	return r[0], nil
}

// HistoryConfig controls the render history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Path is the SQLite database file. Default: "./output/history.db"
	Path string `yaml:"path" toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultMainConfig returns the configuration used when no file exists.
func DefaultMainConfig() MainConfig {
	cfg := baseConfig()
	applyMainConfigDefaults(&cfg)
	return cfg
}

// baseConfig holds the defaults that cannot be told apart from an explicit
// zero value after decoding.
func baseConfig() MainConfig {
	return MainConfig{
		Processing: ProcessingConfig{
			ContinueOnError: true,
			ArchiveInputs:   true,
		},
		History: HistoryConfig{Enabled: true},
	}
}

// applyMainConfigDefaults sets default values for any unset options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.LogsDir == "" {
		config.LogsDir = "./logs"
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "console"
	}

	if config.Processing.MaxConcurrency == 0 {
		config.Processing.MaxConcurrency = 4
	}

	defaults := layout.DefaultConfig()
	r := &config.Receipt
	if r.StoreName == "" {
		r.StoreName = defaults.StoreName
	}
	if r.Subtitle == "" {
		r.Subtitle = defaults.Subtitle
	}
	if r.FooterText == "" {
		r.FooterText = defaults.FooterText
	}
	if r.CurrencySymbol == "" {
		r.CurrencySymbol = "₹"
	}
	if r.CurrencyCode == "" {
		r.CurrencyCode = defaults.CurrencyCode
	}
	if r.FileNameFormat == "" {
		r.FileNameFormat = "receipt_{date}.pdf"
	}
	if r.OverflowPolicy == "" {
		r.OverflowPolicy = string(layout.OverflowDraw)
	}
	if r.PageSize == "" {
		r.PageSize = units.Letter.Name
	}
	if r.MarginInches == 0 {
		r.MarginInches = 0.75
	}

	if config.PDF.Creator == "" {
		config.PDF.Creator = "receipt-generator"
	}
	if config.PDF.GlyphFallbacks == nil {
		config.PDF.GlyphFallbacks = map[string]string{"₹": "Rs."}
	}

	c := &config.CSV
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	if c.HeaderRow == 0 {
		c.HeaderRow = 1
	}
	cols := &c.Columns
	setDefault(&cols.Date, "date")
	setDefault(&cols.CustomerID, "customer_id")
	setDefault(&cols.CustomerName, "customer_name")
	setDefault(&cols.Item, "item")
	setDefault(&cols.Quantity, "quantity")
	setDefault(&cols.UnitPrice, "unit_price")
	setDefault(&cols.LineTotal, "line_total")

	if config.History.Path == "" {
		config.History.Path = filepath.Join(config.OutputDir, "history.db")
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig loads the main configuration from configPath.
//
// PARAMETERS:
//   - configPath: Path to a .yaml, .yml or .toml file. A missing file yields
//     the defaults.
//
// RETURNS:
//   - The loaded configuration.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := baseConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := decode(configPath, data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func decode(path string, data []byte, config *MainConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(config)
	case ".yaml", ".yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	var problems []string

	if _, err := logger.ParseLevel(config.Logging.Level); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(config.Logging.Format) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format %q", config.Logging.Format))
	}

	if config.Processing.MaxConcurrency < 1 {
		problems = append(problems, "processing.max_concurrency must be at least 1")
	}

	if _, err := layout.ParseOverflowPolicy(config.Receipt.OverflowPolicy); err != nil {
		problems = append(problems, err.Error())
	}
	if _, ok := units.PageSizeByName(config.Receipt.PageSize); !ok {
		problems = append(problems, fmt.Sprintf("unknown page size %q", config.Receipt.PageSize))
	}
	if config.Receipt.MarginInches < 0 || config.Receipt.MarginInches >= 3 {
		problems = append(problems, "receipt.margin_inches must be between 0 and 3")
	}
	if !strings.HasSuffix(strings.ToLower(config.Receipt.FileNameFormat), ".pdf") {
		problems = append(problems, "receipt.file_name_format must end in .pdf")
	}
	if strings.ContainsAny(config.Receipt.FileNameFormat, `/\`) {
		problems = append(problems, "receipt.file_name_format must not contain path separators")
	}

	if (config.PDF.RegularFont == "") != (config.PDF.BoldFont == "") {
		problems = append(problems, "pdf.regular_font and pdf.bold_font must be set together")
	}

	if _, err := config.CSV.Comma(); err != nil {
		problems = append(problems, err.Error())
	}
	if config.CSV.HeaderRow < 1 {
		problems = append(problems, "csv.header_row must be at least 1")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// LayoutConfig builds the page layout configuration.
func (c *MainConfig) LayoutConfig() layout.Config {
	cfg := layout.DefaultConfig()

	size, _ := units.PageSizeByName(c.Receipt.PageSize)
	cfg.Page = units.NewPage(size, units.Inches(c.Receipt.MarginInches))
	cfg.StoreName = c.Receipt.StoreName
	cfg.Subtitle = c.Receipt.Subtitle
	cfg.FooterText = c.Receipt.FooterText
	cfg.CurrencyCode = c.Receipt.CurrencyCode
	cfg.Overflow, _ = layout.ParseOverflowPolicy(c.Receipt.OverflowPolicy)

	return cfg
}

// RendererOptions builds the renderer configuration.
func (c *MainConfig) RendererOptions() renderer.Options {
	opts := renderer.Options{
		OutputDir:      c.OutputDir,
		LockDir:        c.LogsDir,
		FileNameFormat: c.Receipt.FileNameFormat,
		CurrencySymbol: c.Receipt.CurrencySymbol,
		Layout:         c.LayoutConfig(),
		PDF: pdfcanvas.Options{
			Author:         c.PDF.Author,
			Creator:        c.PDF.Creator,
			RegularFont:    c.PDF.RegularFont,
			BoldFont:       c.PDF.BoldFont,
			GlyphFallbacks: c.PDF.GlyphFallbacks,
		},
	}
	if c.PDF.Deterministic {
		opts.PDF.CreationDate = DeterministicCreationDate
	}
	return opts
}

// LoggerConfig builds the logger configuration. verbose forces debug.
func (c *MainConfig) LoggerConfig(verbose bool) *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	if c.Logging.File != "" {
		cfg.Output = c.Logging.File
	}
	if verbose {
		cfg.Level = "debug"
	}
	return cfg
}
