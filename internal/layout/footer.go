package layout

import (
	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

// DrawFooter draws the thank-you line in gray, centered on the usable width
// with its baseline at anchor.Y.
func DrawFooter(c Canvas, anchor units.Cursor, cfg Config) {
	c.SetFont(Helvetica(10))
	c.SetFillColor(Gray)
	c.DrawCentredString(anchor.X+cfg.Page.UsableWidth()/2, anchor.Y, cfg.FooterText)
	c.SetFillColor(Black)
}

// Compose lays out a complete receipt page. Each section starts from its own
// page anchor, so a long customer name or item list never shifts another
// section.
func Compose(c Canvas, rec *types.TransactionRecord, cfg Config, f *currency.Formatter) error {
	if cfg.Overflow == OverflowReject {
		if err := cfg.CheckFit(rec); err != nil {
			return err
		}
	}

	DrawHeader(c, rec, cfg.HeaderAnchor(), cfg)
	if _, err := DrawTable(c, rec, cfg.TableAnchor(), cfg, f); err != nil {
		return err
	}
	DrawFooter(c, cfg.FooterAnchor(), cfg)
	return nil
}
