package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

// Offsets inside the table, measured down from the table anchor.
var (
	headerTextDrop = units.Inches(0.25)
	headerRuleDrop = units.Inches(0.35)
	totalRuleGap   = units.Inches(0.1)
	totalLineDrop  = units.Inches(0.35)
)

// OverflowError reports a record with more rows than fit on one page.
type OverflowError struct {
	Rows    int
	MaxRows int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%d items do not fit on one page (max %d)", e.Rows, e.MaxRows)
}

// =============================================================================
// TABLE GEOMETRY
// =============================================================================

// TableGeometry holds the vertical grid of the item table. Every position is
// computed from Top; nothing is accumulated.
type TableGeometry struct {
	Top          units.Length
	HeaderHeight units.Length
	RowHeight    units.Length
}

// Geometry returns the table grid for an anchor at y = top.
func (c Config) Geometry(top units.Length) TableGeometry {
	return TableGeometry{Top: top, HeaderHeight: c.TableHeaderHeight, RowHeight: c.RowHeight}
}

// RowTop is the top edge of row slot i (0-indexed).
func (g TableGeometry) RowTop(i int) units.Length {
	return g.Top - g.HeaderHeight - g.RowHeight.Times(i)
}

// RowBaseline is where the text of row i sits: the bottom of its slot.
func (g TableGeometry) RowBaseline(i int) units.Length {
	return g.RowTop(i) - g.RowHeight
}

// TotalRuleY is the y of the rule drawn under n rows.
func (g TableGeometry) TotalRuleY(n int) units.Length {
	return g.RowTop(n) - totalRuleGap
}

// TotalBaseline is the y of the "Total:" line under n rows.
func (g TableGeometry) TotalBaseline(n int) units.Length {
	return g.RowTop(n) - totalLineDrop
}

// MaxRows is the largest item count whose total line still clears the
// footer area above the bottom margin.
func (c Config) MaxRows() int {
	g := c.Geometry(c.TableAnchor().Y)
	floor := c.Page.Bottom() + c.FooterClearance
	room := g.TotalBaseline(0) - floor
	if room < 0 {
		return 0
	}
	// Small epsilon so an exact fit is not lost to float error.
	return int(math.Floor(float64(room/g.RowHeight) + 1e-9))
}

// CheckFit returns an *OverflowError when rec has more items than MaxRows.
func (c Config) CheckFit(rec *types.TransactionRecord) error {
	if limit := c.MaxRows(); rec.ItemCount() > limit {
		return &OverflowError{Rows: rec.ItemCount(), MaxRows: limit}
	}
	return nil
}

// =============================================================================
// DRAWING
// =============================================================================

// DrawTable draws the column header, one row per item in input order, a rule
// and the grand total. Under OverflowReject nothing is drawn for a record
// that does not fit. It returns the cursor at the total line.
func DrawTable(c Canvas, rec *types.TransactionRecord, anchor units.Cursor, cfg Config, f *currency.Formatter) (units.Cursor, error) {
	if cfg.Overflow == OverflowReject {
		if err := cfg.CheckFit(rec); err != nil {
			return anchor, err
		}
	}

	g := cfg.Geometry(anchor.Y)
	x := func(col int) units.Length { return anchor.X + cfg.Columns[col].Offset }

	c.SetFont(HelveticaBold(12))
	c.SetFillColor(Red)
	for i := range cfg.Columns {
		c.DrawString(x(i), anchor.Y-headerTextDrop, cfg.ColumnLabel(i))
	}

	c.SetFillColor(Black)
	c.SetStrokeColor(Black)
	c.SetLineWidth(1)
	ruleY := anchor.Y - headerRuleDrop
	c.Line(anchor.X, ruleY, anchor.X+cfg.Page.UsableWidth(), ruleY)

	c.SetFont(Helvetica(10))
	for i, item := range rec.Items {
		y := g.RowBaseline(i)
		c.DrawString(x(0), y, item.Name)
		c.DrawString(x(1), y, strconv.Itoa(item.Quantity))
		c.DrawString(x(2), y, f.Format(item.UnitPrice))
		c.DrawString(x(3), y, f.Format(item.LineTotal))
	}

	n := rec.ItemCount()
	totalRule := g.TotalRuleY(n)
	c.Line(anchor.X, totalRule, anchor.X+cfg.Page.UsableWidth(), totalRule)

	c.SetFont(HelveticaBold(12))
	totalY := g.TotalBaseline(n)
	c.DrawString(anchor.X, totalY, f.FormatLabeled("Total: ", rec.Total))

	return units.Cursor{X: anchor.X, Y: totalY}, nil
}
