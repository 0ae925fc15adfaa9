// =============================================================================
// Receipt Generator - Currency Formatter
// =============================================================================
//
// This package renders monetary amounts for printing and parses amounts out
// of input files.
//
// OUTPUT FORMAT:
//   "<symbol><amount with exactly 2 decimal places>"
//   Examples: 100 -> "₹100.00", 99.999 -> "₹100.00", -5 -> "-₹5.00"
//
// ROUNDING:
//   Half away from zero (decimal.Round). For non-negative receipt amounts this
//   is the familiar round-half-up.
//
// SANITIZING:
//   Locale-aware number formatting can introduce bullet (U+2022) or invisible
//   control/format runes. Every formatted string is passed through a rune
//   filter that removes them before it reaches a canvas.
//
// =============================================================================

package currency

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultSymbol is the Indian Rupee sign.
const DefaultSymbol = "₹"

// DefaultPlaces is the number of fraction digits printed.
const DefaultPlaces = 2

// =============================================================================
// ERRORS
// =============================================================================

// ErrNonFinite is the sentinel wrapped by FormatError.
var ErrNonFinite = errors.New("currency: amount is not finite")

// FormatError is returned when an amount cannot be represented, i.e. it is
// NaN or infinite.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("currency: cannot format non-finite amount %q", e.Input)
}

func (e *FormatError) Unwrap() error {
	return ErrNonFinite
}

// =============================================================================
// FORMATTER
// =============================================================================

// Formatter renders amounts with a fixed symbol and precision.
type Formatter struct {
	symbol string
	places int32
}

// New creates a Formatter for the given symbol. An empty symbol falls back to
// DefaultSymbol.
func New(symbol string) *Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Formatter{symbol: symbol, places: DefaultPlaces}
}

// Symbol returns the configured currency glyph.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Format renders a decimal amount. Decimals are always finite, so this never
// fails.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(f.places)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	return Sanitize(sign + f.symbol + rounded.StringFixed(f.places))
}

// FormatFloat renders a float amount, rejecting NaN and infinities.
func (f *Formatter) FormatFloat(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", &FormatError{Input: fmt.Sprint(amount)}
	}
	return f.Format(decimal.NewFromFloat(amount)), nil
}

// FormatLabeled renders "<label><formatted amount>", e.g. "Total: ₹3660.00".
func (f *Formatter) FormatLabeled(label string, amount decimal.Decimal) string {
	return Sanitize(label + f.Format(amount))
}

// =============================================================================
// SANITIZING
// =============================================================================

// strayGlyph reports runes that must never reach printed output.
func strayGlyph(r rune) bool {
	return r == '•' || unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r)
}

// Sanitize removes bullet, control and format runes from s.
func Sanitize(s string) string {
	out, _, err := transform.String(runes.Remove(runes.Predicate(strayGlyph)), s)
	if err != nil {
		return s
	}
	return out
}

// =============================================================================
// PARSING
// =============================================================================

// ParseAmount parses a monetary amount from input text. A currency symbol,
// surrounding whitespace and thousands separators are ignored. The sign may
// come before or after the symbol ("-₹5", "₹-5", "Rs. -5"), and accounting
// parentheses ("(5.00)") mean negative. Textual NaN/Infinity spellings
// (including YAML's ".nan"/".inf") produce a FormatError; other malformed
// input produces a plain error.
func ParseAmount(s string) (decimal.Decimal, error) {
	value := strings.TrimSpace(Sanitize(s))
	if value == "" {
		return decimal.Zero, nil
	}

	if isNonFiniteLiteral(value) {
		return decimal.Decimal{}, &FormatError{Input: s}
	}

	signs := 0
	negative := false
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		signs++
		negative = true
		value = strings.TrimSpace(value[1 : len(value)-1])
	}

	var signed, neg bool
	if value, signed, neg = cutSign(value); signed {
		signs++
		negative = negative != neg
	}
	if value, signed, neg = cutSign(stripSymbol(value)); signed {
		signs++
		negative = negative != neg
	}

	if isNonFiniteLiteral(value) {
		return decimal.Decimal{}, &FormatError{Input: s}
	}
	if signs > 1 || strings.HasPrefix(value, "-") || strings.HasPrefix(value, "+") {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: more than one sign", s)
	}
	value = strings.ReplaceAll(value, ",", "")

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// cutSign removes one leading '-' or '+' and the spaces around it.
func cutSign(s string) (rest string, signed, negative bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		return strings.TrimSpace(s[1:]), true, true
	case strings.HasPrefix(s, "+"):
		return strings.TrimSpace(s[1:]), true, false
	}
	return s, false, false
}

// FromFloat converts a float to a decimal, rejecting NaN and infinities.
func FromFloat(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, &FormatError{Input: fmt.Sprint(v)}
	}
	return decimal.NewFromFloat(v), nil
}

// stripSymbol drops everything before the first digit, sign, or '.' that
// starts a fraction, so "₹12", "Rs. 12", "INR 12" and "Rs. -12" lose their
// symbol but keep the number and its sign.
func stripSymbol(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsDigit(r) || r == '-' || r == '+' {
			return string(rs[i:])
		}
		if r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1]) && (i == 0 || !unicode.IsLetter(rs[i-1])) {
			return string(rs[i:])
		}
	}
	return s
}

func isNonFiniteLiteral(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", ".nan", "inf", ".inf", "infinity":
		return true
	}
	return false
}
