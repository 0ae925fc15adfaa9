package layout

import (
	"fmt"

	"github.com/ginjaninja78/receipt-generator/internal/units"
)

// OverflowPolicy decides what happens when a record has more items than fit
// between the table top and the bottom margin.
type OverflowPolicy string

const (
	// OverflowDraw draws every row even if it falls off the page.
	OverflowDraw OverflowPolicy = "draw"

	// OverflowReject refuses to lay out the record at all.
	OverflowReject OverflowPolicy = "reject"
)

// ParseOverflowPolicy accepts "draw", "reject" or "" (draw).
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(s) {
	case "", OverflowDraw:
		return OverflowDraw, nil
	case OverflowReject:
		return OverflowReject, nil
	}
	return "", fmt.Errorf("unknown overflow policy %q (want %q or %q)", s, OverflowDraw, OverflowReject)
}

// Column is one entry in the table's fixed column table.
type Column struct {
	Label  string
	Offset units.Length // from the left margin
}

// Config holds the fixed page configuration. Nothing here is derived from
// the record being printed.
type Config struct {
	Page units.Page

	StoreName  string
	Subtitle   string
	FooterText string

	// CurrencyCode is shown in the price/total column headers, e.g. "INR".
	CurrencyCode string

	// Columns are Item, Quantity, Price, Total in that order.
	Columns [4]Column

	// TableOffset is the distance from the top margin to the table anchor.
	TableOffset units.Length

	TableHeaderHeight units.Length
	RowHeight         units.Length

	// FooterClearance is the minimum gap kept between the total line and
	// the bottom margin when computing how many rows fit.
	FooterClearance units.Length

	Overflow OverflowPolicy
}

// DefaultConfig is the stationery store receipt on US Letter with 0.75in
// margins.
func DefaultConfig() Config {
	return Config{
		Page:         units.NewPage(units.Letter, units.Inches(0.75)),
		StoreName:    "Star Stationeries",
		Subtitle:     "Payment Receipt",
		FooterText:   "Thank you for choosing us! Happy shopping :)",
		CurrencyCode: "INR",
		Columns: [4]Column{
			{Label: "Item", Offset: 0},
			{Label: "Quantity", Offset: units.Inches(3)},
			{Label: "Price", Offset: units.Inches(4.5)},
			{Label: "Total", Offset: units.Inches(6)},
		},
		TableOffset:       units.Inches(1.5),
		TableHeaderHeight: units.Inches(0.3),
		RowHeight:         units.Inches(0.25),
		FooterClearance:   units.Inches(0.25),
		Overflow:          OverflowDraw,
	}
}

// HeaderAnchor is where the header section starts: the top-left corner of
// the usable area.
func (c Config) HeaderAnchor() units.Cursor {
	return c.Page.Origin()
}

// TableAnchor is computed from the page, not from wherever the header ended.
func (c Config) TableAnchor() units.Cursor {
	return c.Page.Origin().Down(c.TableOffset)
}

// FooterAnchor sits on the bottom margin.
func (c Config) FooterAnchor() units.Cursor {
	return units.Cursor{X: c.Page.Left(), Y: c.Page.Bottom()}
}

// ColumnLabel returns the printed header for column i. Money columns carry
// the currency code, e.g. "Price (INR)".
func (c Config) ColumnLabel(i int) string {
	label := c.Columns[i].Label
	if (i == 2 || i == 3) && c.CurrencyCode != "" {
		return fmt.Sprintf("%s (%s)", label, c.CurrencyCode)
	}
	return label
}
