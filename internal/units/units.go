// =============================================================================
// Receipt Generator - Units and Page Coordinates
// =============================================================================
//
// This package defines the measurement and coordinate conventions shared by
// every layout routine.
//
// COORDINATE SYSTEM:
//   - The internal drawing unit is the PDF point (1 inch = 72 points).
//   - The page origin is the BOTTOM-LEFT corner of the physical page.
//   - Layout code tracks a logical top-down cursor that starts at
//     (margin, pageHeight - margin) and moves down by subtracting.
//
// DRIFT:
//   Every vertical position is computed as a named delta from a fixed anchor
//   (anchor - delta, or anchor - k*step). Never walk a position down by
//   repeated subtraction.
//
// =============================================================================

package units

import "fmt"

// PointsPerInch is the number of device units in one inch.
const PointsPerInch = 72

// Length is a distance in device units (points).
type Length float64

// Inch is one inch expressed in device units.
const Inch Length = PointsPerInch

// Inches converts a physical measurement in inches to device units.
func Inches(v float64) Length {
	return Length(v * PointsPerInch)
}

// Points returns a Length from a raw point value.
func Points(v float64) Length {
	return Length(v)
}

// Inches returns the length expressed in inches.
func (l Length) Inches() float64 {
	return float64(l) / PointsPerInch
}

// Float64 returns the raw point value.
func (l Length) Float64() float64 {
	return float64(l)
}

// Times returns l scaled by an integer step count. Used for row offsets so
// that row i is always anchor - i*step.
func (l Length) Times(n int) Length {
	return l * Length(n)
}

func (l Length) String() string {
	return fmt.Sprintf("%.2fpt", float64(l))
}

// =============================================================================
// PAGE GEOMETRY
// =============================================================================

// PageSize is a page's physical size in device units.
type PageSize struct {
	Name   string
	Width  Length
	Height Length
}

// Letter is US Letter, 8.5" x 11".
var Letter = PageSize{Name: "Letter", Width: 612, Height: 792}

// A4 is ISO A4, 210mm x 297mm.
var A4 = PageSize{Name: "A4", Width: 595.27559, Height: 841.88976}

// PageSizeByName looks up a supported page size. The lookup is case-sensitive
// on the canonical names "Letter" and "A4"; lowercase aliases are accepted.
func PageSizeByName(name string) (PageSize, bool) {
	switch name {
	case "Letter", "letter", "":
		return Letter, true
	case "A4", "a4":
		return A4, true
	}
	return PageSize{}, false
}

// Page is a page size combined with a uniform margin.
type Page struct {
	Size   PageSize
	Margin Length
}

// NewPage returns a page with the same margin on all four sides.
func NewPage(size PageSize, margin Length) Page {
	return Page{Size: size, Margin: margin}
}

// UsableWidth is the width between the left and right margins.
func (p Page) UsableWidth() Length {
	return p.Size.Width - 2*p.Margin
}

// Top is the y coordinate of the top margin line.
func (p Page) Top() Length {
	return p.Size.Height - p.Margin
}

// Bottom is the y coordinate of the bottom margin line.
func (p Page) Bottom() Length {
	return p.Margin
}

// Left is the x coordinate of the left margin line.
func (p Page) Left() Length {
	return p.Margin
}

// CenterX is the horizontal center of the usable area.
func (p Page) CenterX() Length {
	return p.Margin + p.UsableWidth()/2
}

// Origin is the top-left cursor of the usable area.
func (p Page) Origin() Cursor {
	return Cursor{X: p.Left(), Y: p.Top()}
}

// =============================================================================
// CURSOR
// =============================================================================

// Cursor is a drawing position. Y grows upward; moving down the page means
// decreasing Y.
type Cursor struct {
	X Length
	Y Length
}

// Down returns a cursor delta below c.
func (c Cursor) Down(delta Length) Cursor {
	return Cursor{X: c.X, Y: c.Y - delta}
}

// Right returns a cursor delta to the right of c.
func (c Cursor) Right(delta Length) Cursor {
	return Cursor{X: c.X + delta, Y: c.Y}
}

func (c Cursor) String() string {
	return fmt.Sprintf("(%s, %s)", c.X, c.Y)
}
