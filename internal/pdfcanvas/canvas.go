// =============================================================================
// Receipt Generator - PDF Canvas
// =============================================================================
//
// Canvas implements layout.Canvas on top of go-pdf/fpdf. It owns exactly one
// page and can be sealed (serialized) exactly once.
//
// COORDINATES:
//   layout uses a bottom-left origin in points; fpdf uses a top-left origin.
//   Every y coordinate is flipped as pageHeight - y on the way in.
//
// FONTS:
//   Without font files the built-in Helvetica is used. Its cp1252 encoding
//   has no ₹, so text first passes through the configured glyph fallbacks
//   (default "₹" -> "Rs.") and then through fpdf's cp1252 translator, which
//   turns anything still unsupported into '.'.
//   With RegularFont/BoldFont set, both TTF files are embedded as a UTF-8
//   family and text is drawn unchanged.
//
// =============================================================================

package pdfcanvas

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ginjaninja78/receipt-generator/internal/layout"
	"github.com/ginjaninja78/receipt-generator/internal/units"
)

// ErrSealed is returned when a sealed canvas is sealed again.
var ErrSealed = errors.New("canvas already sealed")

const utf8Family = "receipt"

// Options configure a Canvas.
type Options struct {
	Title   string
	Author  string
	Creator string

	// RegularFont and BoldFont are TTF files; both or neither.
	RegularFont string
	BoldFont    string

	// GlyphFallbacks maps characters missing from the built-in fonts to
	// printable replacements. Ignored when TTF fonts are configured.
	GlyphFallbacks map[string]string

	// CreationDate is written into the document info. Zero means now. A
	// fixed date makes output byte-for-byte reproducible.
	CreationDate time.Time

	// NoCompression leaves page content streams uncompressed.
	NoCompression bool
}

// Canvas is a single-page fpdf document.
type Canvas struct {
	pdf    *fpdf.Fpdf
	height float64

	utf8      bool
	translate func(string) string
	fallbacks *strings.Replacer

	sealed bool
}

// New creates a canvas with one blank page of the given size.
func New(size units.PageSize, opts Options) (*Canvas, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: size.Width.Float64(), Ht: size.Height.Float64()},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(!opts.NoCompression)

	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}
	if !opts.CreationDate.IsZero() {
		pdf.SetCreationDate(opts.CreationDate)
		pdf.SetCatalogSort(true)
	}

	c := &Canvas{pdf: pdf, height: size.Height.Float64()}

	switch {
	case opts.RegularFont != "" && opts.BoldFont != "":
		pdf.AddUTF8Font(utf8Family, "", opts.RegularFont)
		pdf.AddUTF8Font(utf8Family, "B", opts.BoldFont)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to load fonts: %w", err)
		}
		c.utf8 = true
	case opts.RegularFont != "" || opts.BoldFont != "":
		return nil, errors.New("regular and bold font files must be set together")
	default:
		c.translate = pdf.UnicodeTranslatorFromDescriptor("")
		c.fallbacks = newFallbackReplacer(opts.GlyphFallbacks)
	}

	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return c, nil
}

// newFallbackReplacer builds a replacer with keys in a fixed order, longest
// first, so overlapping keys resolve the same way on every run.
func newFallbackReplacer(fallbacks map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(fallbacks))
	for k := range fallbacks {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, fallbacks[k])
	}
	return strings.NewReplacer(pairs...)
}

// =============================================================================
// layout.Canvas
// =============================================================================

func (c *Canvas) SetFont(font layout.Font) {
	style := ""
	if font.Style == layout.Bold {
		style = "B"
	}
	family := font.Family
	if c.utf8 {
		family = utf8Family
	}
	c.pdf.SetFont(family, style, font.Size)
}

func (c *Canvas) SetFillColor(col layout.Color) {
	c.pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
}

func (c *Canvas) SetStrokeColor(col layout.Color) {
	c.pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
}

func (c *Canvas) SetLineWidth(w units.Length) {
	c.pdf.SetLineWidth(w.Float64())
}

func (c *Canvas) DrawString(x, y units.Length, text string) {
	c.pdf.Text(x.Float64(), c.flip(y), c.encode(text))
}

func (c *Canvas) DrawCentredString(x, y units.Length, text string) {
	s := c.encode(text)
	w := c.pdf.GetStringWidth(s)
	c.pdf.Text(x.Float64()-w/2, c.flip(y), s)
}

func (c *Canvas) Line(x1, y1, x2, y2 units.Length) {
	c.pdf.Line(x1.Float64(), c.flip(y1), x2.Float64(), c.flip(y2))
}

// =============================================================================
// OUTPUT
// =============================================================================

// Seal writes the finished document to w. A canvas can be sealed once; the
// second call returns ErrSealed without writing.
func (c *Canvas) Seal(w io.Writer) error {
	if c.sealed {
		return ErrSealed
	}
	c.sealed = true

	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("failed to draw page: %w", err)
	}
	if err := c.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// Sealed reports whether Seal has been called.
func (c *Canvas) Sealed() bool {
	return c.sealed
}

// Encode returns text as it will be written to the page.
func (c *Canvas) Encode(text string) string {
	return c.encode(text)
}

func (c *Canvas) encode(text string) string {
	if c.utf8 {
		return text
	}
	return c.translate(c.fallbacks.Replace(text))
}

func (c *Canvas) flip(y units.Length) float64 {
	return c.height - y.Float64()
}
