package layout

import (
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

// Vertical offsets below the header anchor.
var (
	subtitleDrop   = units.Inches(0.4)
	dateDrop       = units.Inches(0.9)
	customerIDDrop = units.Inches(1.15)
	customerDrop   = units.Inches(1.4)
	fieldStep      = units.Inches(0.25)
)

// Horizontal offsets of field values from the left margin.
var (
	dateValueOffset       = units.Points(50)
	customerIDValueOffset = units.Points(80)
	customerValueOffset   = units.Points(70)
)

type headerField struct {
	label       string
	value       string
	drop        units.Length
	valueOffset units.Length
}

// DrawHeader draws the store title, the subtitle and the date / customer
// fields, top-down from anchor. Field values are drawn verbatim. It returns
// the cursor one field step below the last field.
func DrawHeader(c Canvas, rec *types.TransactionRecord, anchor units.Cursor, cfg Config) units.Cursor {
	centerX := anchor.X + cfg.Page.UsableWidth()/2

	c.SetFont(HelveticaBold(16))
	c.SetFillColor(Blue)
	c.DrawCentredString(centerX, anchor.Y, cfg.StoreName)

	c.SetFillColor(Black)
	c.SetFont(HelveticaBold(14))
	c.DrawCentredString(centerX, anchor.Y-subtitleDrop, cfg.Subtitle)

	fields := []headerField{
		{"Date:", rec.Date, dateDrop, dateValueOffset},
		{"Customer ID:", rec.CustomerID, customerIDDrop, customerIDValueOffset},
		{"Customer:", rec.CustomerName, customerDrop, customerValueOffset},
	}

	for _, f := range fields {
		y := anchor.Y - f.drop

		c.SetFont(HelveticaBold(12))
		c.DrawString(anchor.X, y, f.label)
		c.SetFont(Helvetica(12))
		c.DrawString(anchor.X+f.valueOffset, y, f.value)
	}

	return units.Cursor{X: anchor.X, Y: anchor.Y - customerDrop - fieldStep}
}
