package layout

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

const delta = 1e-6

func sample() *types.TransactionRecord {
	rec := types.SampleTransaction()
	return &rec
}

func manyItems(n int) *types.TransactionRecord {
	rec := &types.TransactionRecord{Date: "2024/06/08", CustomerID: "C1", CustomerName: "Long List"}
	for i := 0; i < n; i++ {
		rec.Items = append(rec.Items, types.LineItem{
			Name:      "Pencil",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(5),
			LineTotal: decimal.NewFromInt(5),
		})
	}
	rec.Total = decimal.NewFromInt(int64(5 * n))
	return rec
}

func TestDrawHeader_Positions(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()

	cursor := DrawHeader(rec, sample(), cfg.HeaderAnchor(), cfg)

	title, ok := rec.Find("Star Stationeries")
	require.True(t, ok)
	assert.Equal(t, OpCentredText, title.Kind)
	assert.InDelta(t, 306, title.X.Float64(), delta)
	assert.InDelta(t, 738, title.Y.Float64(), delta)
	assert.Equal(t, HelveticaBold(16), title.Font)
	assert.Equal(t, Blue, title.Fill)

	subtitle, ok := rec.Find("Payment Receipt")
	require.True(t, ok)
	assert.InDelta(t, 709.2, subtitle.Y.Float64(), delta)
	assert.Equal(t, Black, subtitle.Fill)

	tests := []struct {
		label  string
		value  string
		y      float64
		valueX float64
	}{
		{"Date:", "2024/06/08", 673.2, 104},
		{"Customer ID:", "SS1256", 655.2, 134},
		{"Customer:", "Tara Arjun", 637.2, 124},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			label, ok := rec.Find(tt.label)
			require.True(t, ok)
			assert.InDelta(t, 54, label.X.Float64(), delta)
			assert.InDelta(t, tt.y, label.Y.Float64(), delta)
			assert.Equal(t, Bold, label.Font.Style)

			value, ok := rec.Find(tt.value)
			require.True(t, ok)
			assert.InDelta(t, tt.valueX, value.X.Float64(), delta)
			assert.InDelta(t, tt.y, value.Y.Float64(), delta)
			assert.Equal(t, Regular, value.Font.Style)
		})
	}

	assert.InDelta(t, 619.2, cursor.Y.Float64(), delta)
}

func TestDrawHeader_LongNameIsNotTruncated(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()
	r := sample()
	r.CustomerName = "Tara Arjun Venkataraman Subramaniam Iyer The Third Of Chennai"

	DrawHeader(rec, r, cfg.HeaderAnchor(), cfg)

	_, ok := rec.Find(r.CustomerName)
	assert.True(t, ok)
}

func TestDrawTable_ColumnsAndRows(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()

	_, err := DrawTable(rec, sample(), cfg.TableAnchor(), cfg, currency.New(""))
	require.NoError(t, err)

	wantX := map[string]float64{
		"Item":        54,
		"Quantity":    270,
		"Price (INR)": 378,
		"Total (INR)": 486,
	}
	for label, x := range wantX {
		op, ok := rec.Find(label)
		require.True(t, ok, label)
		assert.InDelta(t, x, op.X.Float64(), delta, label)
		assert.InDelta(t, 612, op.Y.Float64(), delta, label)
		assert.Equal(t, Red, op.Fill, label)
	}

	first, ok := rec.Find("Colouring Books")
	require.True(t, ok)
	assert.InDelta(t, 590.4, first.Y.Float64(), delta)
	assert.Equal(t, Black, first.Fill)
	assert.Equal(t, Helvetica(10), first.Font)

	// Rows are 18pt apart, computed from the anchor.
	texts := rec.Texts()
	var rowYs []float64
	for _, op := range texts {
		if op.X == 54 && op.Font == Helvetica(10) {
			rowYs = append(rowYs, op.Y.Float64())
		}
	}
	require.Len(t, rowYs, 12)
	for i := 1; i < len(rowYs); i++ {
		assert.InDelta(t, 18, rowYs[i-1]-rowYs[i], delta)
	}

	total, ok := rec.Find("Total: ₹3660.00")
	require.True(t, ok)
	assert.InDelta(t, 367.2, total.Y.Float64(), delta)
	assert.Equal(t, HelveticaBold(12), total.Font)
}

func TestDrawTable_RowValuesFormatted(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()

	_, err := DrawTable(rec, sample(), cfg.TableAnchor(), cfg, currency.New(""))
	require.NoError(t, err)

	price, ok := rec.Find("₹200.00")
	require.True(t, ok)
	assert.InDelta(t, 378, price.X.Float64(), delta)
}

func TestDrawTable_Rules(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()

	_, err := DrawTable(rec, sample(), cfg.TableAnchor(), cfg, currency.New(""))
	require.NoError(t, err)

	lines := rec.Lines()
	require.Len(t, lines, 2)

	assert.InDelta(t, 604.8, lines[0].Y.Float64(), delta)
	assert.InDelta(t, 54, lines[0].X.Float64(), delta)
	assert.InDelta(t, 558, lines[0].X2.Float64(), delta)
	assert.InDelta(t, 1, lines[0].LineWidth.Float64(), delta)

	assert.InDelta(t, 385.2, lines[1].Y.Float64(), delta)
}

func TestDrawTable_EmptyItems(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()
	r := &types.TransactionRecord{Date: "2024/06/08", CustomerID: "C1", CustomerName: "Nobody"}

	_, err := DrawTable(rec, r, cfg.TableAnchor(), cfg, currency.New(""))
	require.NoError(t, err)

	// Four column labels and the total line, no rows.
	assert.Len(t, rec.Texts(), 5)
	total, ok := rec.Find("Total: ₹0.00")
	require.True(t, ok)
	assert.InDelta(t, 583.2, total.Y.Float64(), delta)
}

func TestMaxRows(t *testing.T) {
	assert.Equal(t, 28, DefaultConfig().MaxRows())
}

func TestDrawTable_OverflowReject(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overflow = OverflowReject
	rec := NewRecorder()

	_, err := DrawTable(rec, manyItems(40), cfg.TableAnchor(), cfg, currency.New(""))

	var overflow *OverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 40, overflow.Rows)
	assert.Equal(t, 28, overflow.MaxRows)
	assert.Empty(t, rec.Ops)
}

func TestDrawTable_OverflowDraw(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()

	_, err := DrawTable(rec, manyItems(40), cfg.TableAnchor(), cfg, currency.New(""))
	require.NoError(t, err)

	assert.Len(t, rec.Texts(), 4+40*4+1)
}

func TestDrawFooter(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()

	DrawFooter(rec, cfg.FooterAnchor(), cfg)

	op, ok := rec.Find("Thank you for choosing us! Happy shopping :)")
	require.True(t, ok)
	assert.Equal(t, OpCentredText, op.Kind)
	assert.InDelta(t, 306, op.X.Float64(), delta)
	assert.InDelta(t, 54, op.Y.Float64(), delta)
	assert.Equal(t, Gray, op.Fill)
	assert.Equal(t, Helvetica(10), op.Font)
}

func TestCompose_SectionsAreIndependent(t *testing.T) {
	cfg := DefaultConfig()

	short := NewRecorder()
	require.NoError(t, Compose(short, manyItems(1), cfg, currency.New("")))

	long := NewRecorder()
	require.NoError(t, Compose(long, manyItems(20), cfg, currency.New("")))

	for _, label := range []string{"Item", "Thank you for choosing us! Happy shopping :)"} {
		a, ok := short.Find(label)
		require.True(t, ok)
		b, ok := long.Find(label)
		require.True(t, ok)
		assert.Equal(t, a.Y, b.Y, label)
	}
}

func TestCompose_EmptyItems(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewRecorder()
	r := &types.TransactionRecord{Date: "2024/06/08", CustomerID: "C1", CustomerName: "Nobody"}

	require.NoError(t, Compose(rec, r, cfg, currency.New("")))

	for _, s := range []string{
		"Star Stationeries",
		"Payment Receipt",
		"Nobody",
		"Item",
		"Total (INR)",
		"Total: ₹0.00",
		"Thank you for choosing us! Happy shopping :)",
	} {
		_, ok := rec.Find(s)
		assert.True(t, ok, s)
	}

	// Title, subtitle, three label/value pairs, four column labels, the
	// total line and the footer. No item rows.
	assert.Len(t, rec.Texts(), 2+6+4+1+1)
	assert.Equal(t, 2, rec.Count(OpLine))
	for _, op := range rec.Texts() {
		if op.Kind == OpText {
			assert.NotEqual(t, Helvetica(10), op.Font, "unexpected row text %q", op.Text)
		}
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	p, err := ParseOverflowPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OverflowDraw, p)

	p, err = ParseOverflowPolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, OverflowReject, p)

	_, err = ParseOverflowPolicy("paginate")
	assert.Error(t, err)
}

func TestConfig_A4Page(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Page = units.NewPage(units.A4, units.Inches(0.75))

	op := NewRecorder()
	DrawFooter(op, cfg.FooterAnchor(), cfg)
	assert.InDelta(t, cfg.Page.CenterX().Float64(), op.Ops[0].X.Float64(), delta)
}
