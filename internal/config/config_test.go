package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/receipt-generator/internal/layout"
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMainConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Processing.MaxConcurrency)
	assert.True(t, cfg.Processing.ContinueOnError)
	assert.True(t, cfg.Processing.ArchiveInputs)
	assert.Equal(t, "Star Stationeries", cfg.Receipt.StoreName)
	assert.Equal(t, "₹", cfg.Receipt.CurrencySymbol)
	assert.Equal(t, "receipt_{date}.pdf", cfg.Receipt.FileNameFormat)
	assert.Equal(t, "draw", cfg.Receipt.OverflowPolicy)
	assert.Equal(t, map[string]string{"₹": "Rs."}, cfg.PDF.GlyphFallbacks)
	assert.Equal(t, filepath.Join("./output", "history.db"), cfg.History.Path)
}

func TestLoadMainConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
output_dir: ./receipts
processing:
  max_concurrency: 2
  continue_on_error: false
  strict_totals: true
receipt:
  store_name: Moon Books
  overflow_policy: reject
  page_size: A4
csv:
  delimiter: ";"
  columns:
    item: product
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./receipts", cfg.OutputDir)
	assert.Equal(t, filepath.Join("./receipts", "history.db"), cfg.History.Path)
	assert.Equal(t, 2, cfg.Processing.MaxConcurrency)
	assert.False(t, cfg.Processing.ContinueOnError)
	assert.True(t, cfg.Processing.StrictTotals)
	assert.True(t, cfg.Processing.ArchiveInputs)
	assert.Equal(t, "Moon Books", cfg.Receipt.StoreName)
	assert.Equal(t, "Payment Receipt", cfg.Receipt.Subtitle)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, "product", cfg.CSV.Columns.Item)
	assert.Equal(t, "quantity", cfg.CSV.Columns.Quantity)

	lc := cfg.LayoutConfig()
	assert.Equal(t, layout.OverflowReject, lc.Overflow)
	assert.Equal(t, units.A4, lc.Page.Size)
	assert.Equal(t, "Moon Books", lc.StoreName)
}

func TestLoadMainConfig_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
input_dir = "./in"

[logging]
level = "debug"
format = "json"

[receipt]
currency_symbol = "$"
currency_code = "USD"
file_name_format = "receipt_{customer_id}_{date}.pdf"

[history]
enabled = false
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./in", cfg.InputDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "$", cfg.Receipt.CurrencySymbol)
	assert.Equal(t, "receipt_{customer_id}_{date}.pdf", cfg.Receipt.FileNameFormat)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "Price (USD)", cfg.LayoutConfig().ColumnLabel(2))
}

func TestLoadMainConfig_EmptyYAML(t *testing.T) {
	cfg, err := LoadMainConfig(writeFile(t, "config.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, "./input", cfg.InputDir)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown key", "c.yaml", "outptu_dir: x\n"},
		{"bad overflow", "c.yaml", "receipt:\n  overflow_policy: paginate\n"},
		{"bad page", "c.yaml", "receipt:\n  page_size: legal\n"},
		{"bad level", "c.yaml", "logging:\n  level: loud\n"},
		{"bad name format", "c.yaml", "receipt:\n  file_name_format: receipt_{date}.txt\n"},
		{"separator in name", "c.yaml", "receipt:\n  file_name_format: out/receipt_{date}.pdf\n"},
		{"half fonts", "c.yaml", "pdf:\n  regular_font: a.ttf\n"},
		{"negative concurrency", "c.yaml", "processing:\n  max_concurrency: -1\n"},
		{"bad toml", "c.toml", "input_dir = \n"},
		{"unsupported format", "c.json", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMainConfig(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := DefaultMainConfig()

	assert.Equal(t, "info", cfg.LoggerConfig(false).Level)
	assert.Equal(t, "debug", cfg.LoggerConfig(true).Level)
	assert.Equal(t, "stderr", cfg.LoggerConfig(false).Output)

	cfg.Logging.File = "/tmp/render.log"
	assert.Equal(t, "/tmp/render.log", cfg.LoggerConfig(false).Output)
}

func TestCSVSettings_Comma(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"", ','},
		{",", ','},
		{"tab", '\t'},
		{`\t`, '\t'},
		{"pipe", '|'},
		{";", ';'},
		{"#", '#'},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CSVSettings{Delimiter: tt.in}.Comma()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"ab", `"`, "\n"} {
		_, err := CSVSettings{Delimiter: bad}.Comma()
		assert.Error(t, err, bad)
	}
}

func TestRendererOptions(t *testing.T) {
	cfg := DefaultMainConfig()
	cfg.OutputDir = "./receipts"
	cfg.PDF.Author = "Star Stationeries"

	opts := cfg.RendererOptions()
	assert.Equal(t, "./receipts", opts.OutputDir)
	assert.Equal(t, "./logs", opts.LockDir)
	assert.Equal(t, "receipt_{date}.pdf", opts.FileNameFormat)
	assert.Equal(t, "₹", opts.CurrencySymbol)
	assert.Equal(t, "Star Stationeries", opts.PDF.Author)
	assert.Equal(t, "Rs.", opts.PDF.GlyphFallbacks["₹"])
	assert.True(t, opts.PDF.CreationDate.IsZero())

	cfg.PDF.Deterministic = true
	assert.Equal(t, DeterministicCreationDate, cfg.RendererOptions().PDF.CreationDate)
}
