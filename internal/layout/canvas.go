// =============================================================================
// Receipt Generator - Drawing Surface
// =============================================================================
//
// The layout routines never talk to a PDF library directly. They issue draw
// calls against the Canvas interface below, in page coordinates (points,
// origin at the bottom-left corner).
//
// IMPLEMENTATIONS:
//   - pdfcanvas.Canvas : writes a real PDF page
//   - Recorder         : keeps every draw call in memory (tests, dry runs)
//
// =============================================================================

package layout

import (
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

// =============================================================================
// CANVAS INTERFACE
// =============================================================================

// Canvas is a single page drawing surface with a bottom-left origin.
// Style setters affect every subsequent draw call, like a pen.
type Canvas interface {
	SetFont(font Font)
	SetFillColor(c Color)
	SetStrokeColor(c Color)
	SetLineWidth(w units.Length)

	// DrawString draws text with its baseline starting at (x, y).
	DrawString(x, y units.Length, text string)

	// DrawCentredString draws text horizontally centered on x.
	DrawCentredString(x, y units.Length, text string)

	// Line strokes a straight line from (x1, y1) to (x2, y2).
	Line(x1, y1, x2, y2 units.Length)
}

// =============================================================================
// FONTS AND COLORS
// =============================================================================

// FontStyle selects the weight of a font family.
type FontStyle int

const (
	Regular FontStyle = iota
	Bold
)

func (s FontStyle) String() string {
	if s == Bold {
		return "Bold"
	}
	return "Regular"
}

// Font is a family, style and size in points.
type Font struct {
	Family string
	Style  FontStyle
	Size   float64
}

// Helvetica returns a regular Helvetica font of the given size.
func Helvetica(size float64) Font {
	return Font{Family: "Helvetica", Style: Regular, Size: size}
}

// HelveticaBold returns a bold Helvetica font of the given size.
func HelveticaBold(size float64) Font {
	return Font{Family: "Helvetica", Style: Bold, Size: size}
}

// Color is an 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0, 0, 0}
	Blue  = Color{0, 0, 255}
	Red   = Color{255, 0, 0}
	Gray  = Color{128, 128, 128}
)

// =============================================================================
// RECORDER
// =============================================================================

// OpKind identifies a recorded draw call.
type OpKind int

const (
	OpText OpKind = iota
	OpCentredText
	OpLine
)

func (k OpKind) String() string {
	switch k {
	case OpText:
		return "text"
	case OpCentredText:
		return "centred-text"
	case OpLine:
		return "line"
	}
	return "unknown"
}

// Op is one recorded draw call together with the pen state at the time.
type Op struct {
	Kind      OpKind
	Text      string
	X, Y      units.Length
	X2, Y2    units.Length
	Font      Font
	Fill      Color
	Stroke    Color
	LineWidth units.Length
}

// Recorder is an in-memory Canvas. It keeps draw calls in issue order.
type Recorder struct {
	font      Font
	fill      Color
	stroke    Color
	lineWidth units.Length

	Ops []Op
}

// NewRecorder returns an empty Recorder with a black pen.
func NewRecorder() *Recorder {
	return &Recorder{lineWidth: 1}
}

func (r *Recorder) SetFont(font Font) {
	r.font = font
}

func (r *Recorder) SetFillColor(c Color) {
	r.fill = c
}

func (r *Recorder) SetStrokeColor(c Color) {
	r.stroke = c
}

func (r *Recorder) SetLineWidth(w units.Length) {
	r.lineWidth = w
}

func (r *Recorder) DrawString(x, y units.Length, text string) {
	r.record(Op{Kind: OpText, Text: text, X: x, Y: y})
}

func (r *Recorder) DrawCentredString(x, y units.Length, text string) {
	r.record(Op{Kind: OpCentredText, Text: text, X: x, Y: y})
}

func (r *Recorder) Line(x1, y1, x2, y2 units.Length) {
	r.record(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2})
}

func (r *Recorder) record(op Op) {
	op.Font = r.font
	op.Fill = r.fill
	op.Stroke = r.stroke
	op.LineWidth = r.lineWidth
	r.Ops = append(r.Ops, op)
}

// Texts returns all text ops (plain and centred) in order.
func (r *Recorder) Texts() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpText || op.Kind == OpCentredText {
			out = append(out, op)
		}
	}
	return out
}

// Lines returns all line ops in order.
func (r *Recorder) Lines() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpLine {
			out = append(out, op)
		}
	}
	return out
}

// Find returns the first text op whose text equals s.
func (r *Recorder) Find(s string) (Op, bool) {
	for _, op := range r.Ops {
		if op.Kind != OpLine && op.Text == s {
			return op, true
		}
	}
	return Op{}, false
}

// Count returns the number of recorded ops of kind k.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}
