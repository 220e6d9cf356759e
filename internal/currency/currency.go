// Package currency converts between display money strings such as
// "₦1,234.56" and exact decimal values.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultSymbol is the Naira glyph used by the fixtures.
const DefaultSymbol = "₦"

// ErrMalformedAmount is returned when a display string is not a number once
// the glyph and grouping separators are removed.
var ErrMalformedAmount = errors.New("malformed amount")

// Separators are taken from the English locale; digits are grouped on the
// exact decimal string so no precision is lost to float conversion.
var groupSep, decimalSep = separators(language.English)

var thousand = decimal.New(1, 3)

// Magnitude suffixes, largest first.
var scales = []struct {
	min    decimal.Decimal
	suffix string
}{
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// Normalizer parses and formats amounts for one currency glyph.
type Normalizer struct {
	Symbol string
}

// New returns a Normalizer for symbol, falling back to DefaultSymbol.
func New(symbol string) Normalizer {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return Normalizer{Symbol: symbol}
}

var std = New(DefaultSymbol)

// Parse strips the glyph and comma separators and parses the remainder as a
// base-10 decimal. A missing glyph is accepted; signs and exponents are not.
func (n Normalizer) Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, n.Symbol)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)
	if clean == "" || strings.ContainsAny(clean, "+-eE") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return d, nil
}

// ParseOrZero is Parse with malformed input mapped to zero.
func (n Normalizer) ParseOrZero(s string) decimal.Decimal {
	d, err := n.Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders d with the glyph, comma grouping and exactly places
// fraction digits, rounding half-up.
func (n Normalizer) Format(d decimal.Decimal, places int) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + n.Symbol + group(Round(d, places), places)
}

// FormatCompact renders d scaled by the largest of K (1e3), M (1e6) or
// B (1e9) that it reaches, e.g. "₦1.5M". Values below 1e3 render like Format.
func (n Normalizer) FormatCompact(d decimal.Decimal, places int) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	i := len(scales)
	for j, s := range scales {
		if d.GreaterThanOrEqual(s.min) {
			i = j
			break
		}
	}
	for {
		v, suffix := d, ""
		if i < len(scales) {
			v, suffix = d.Div(scales[i].min), scales[i].suffix
		}
		v = Round(v, places)
		// Rounding can carry into the next magnitude: 999,999 is 1M, not 1,000K.
		if i > 0 && v.GreaterThanOrEqual(thousand) {
			i--
			continue
		}
		return sign + n.Symbol + group(v, places) + suffix
	}
}

// group renders a non-negative d with exactly places fraction digits and
// thousands separators.
func group(d decimal.Decimal, places int) string {
	whole, frac, _ := strings.Cut(d.StringFixed(int32(places)), ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(groupSep)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(decimalSep)
		b.WriteString(frac)
	}
	return b.String()
}

func separators(tag language.Tag) (string, string) {
	p := message.NewPrinter(tag)
	g := strings.TrimSuffix(strings.TrimPrefix(p.Sprint(number.Decimal(1000)), "1"), "000")
	d := strings.TrimSuffix(strings.TrimPrefix(p.Sprint(number.Decimal(1.5, number.MinFractionDigits(1))), "1"), "5")
	if d == "" {
		d = "."
	}
	return g, d
}

// Round rounds half-up (away from zero) to places fraction digits.
func Round(d decimal.Decimal, places int) decimal.Decimal {
	return d.Round(int32(places))
}

// Float returns d rounded to 2 places as a float64 for output records.
func Float(d decimal.Decimal) float64 {
	return Round(d, 2).InexactFloat64()
}

// Parse uses the default Naira normalizer.
func Parse(s string) (decimal.Decimal, error) { return std.Parse(s) }

// ParseOrZero uses the default Naira normalizer.
func ParseOrZero(s string) decimal.Decimal { return std.ParseOrZero(s) }

// Format uses the default Naira normalizer.
func Format(d decimal.Decimal, places int) string { return std.Format(d, places) }

// FormatCompact uses the default Naira normalizer.
func FormatCompact(d decimal.Decimal, places int) string { return std.FormatCompact(d, places) }
