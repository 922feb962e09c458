// Package money provides locale-tolerant parsing of statement amounts into
// fixed-point decimals. Bank statements mix US and European separator
// conventions, parenthesized negatives, DR/CR suffixes and currency symbols
// in several scripts; everything funnels through Parse so the rest of the
// pipeline never touches floating point.
package money

import (
	"errors"
	"regexp"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrNotAnAmount is returned when the input has no parsable numeric value.
var ErrNotAnAmount = errors.New("money: not an amount")

var (
	amountTokenRe = regexp.MustCompile(`\(?-?\d{1,3}(?:[,\s]\d{3})*(?:\.\d{2})?\)?|\(?-?\d+(?:[.,]\d{1,2})?\)?`)
	drSuffixRe    = regexp.MustCompile(`(?i)\bdr\b`)
	leadingNegRe  = regexp.MustCompile(`(^|\s)-\d`)
	currencyRunes = "₦$€£₹¥₩₺₫₪"
)

// Parse converts a raw amount string into a decimal value.
//
// Recognized forms: "1,234.56", "1.234,56", "1 234,56", "(500.00)",
// "-500.00", "500.00 DR", "₦1,000.00 CR". Sign rules: parentheses, an
// explicit minus, or a DR suffix make the value negative; CR leaves it
// positive. When both grouping and decimal separators appear, the one that
// occurs last is the decimal separator; a lone separator is treated as
// decimal only when at most two digits follow it.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrNotAnAmount
	}

	negative := strings.Contains(s, "(") && strings.Contains(s, ")")
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") || leadingNegRe.MatchString(s) {
		negative = true
	}
	if drSuffixRe.MatchString(s) {
		negative = true
	}

	cleaned := stripNonNumeric(s)
	cleaned = normalizeSeparators(cleaned)
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero, ErrNotAnAmount
	}

	value, err := decimal.NewFromString(strings.TrimPrefix(cleaned, "-"))
	if err != nil {
		return decimal.Zero, ErrNotAnAmount
	}
	if negative {
		value = value.Neg()
	}
	return value, nil
}

// LooksLikeAmount reports whether the text contains an amount-shaped token.
func LooksLikeAmount(text string) bool {
	return amountTokenRe.MatchString(text)
}

// RoundCents rounds to two decimal places, the resolution used for
// transaction identity and balance checks.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// KnownCurrency reports whether code is a recognized ISO-4217 currency.
func KnownCurrency(code string) bool {
	return gomoney.GetCurrency(strings.ToUpper(strings.TrimSpace(code))) != nil
}

// Format renders an amount with its currency symbol and the currency's
// minor-unit precision, e.g. Format(d, "NGN") -> "₦1,234.56".
func Format(d decimal.Decimal, code string) string {
	cur := gomoney.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return d.StringFixed(2)
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, cur.Code).Display()
}

// stripNonNumeric drops currency symbols, letters, parentheses and inner
// whitespace, keeping digits, separators and the minus sign.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		case strings.ContainsRune(currencyRunes, r):
			// dropped
		default:
			// letters, spaces, parens: dropped
		}
	}
	out := b.String()
	// Trailing-minus exports ("500.00-") already contributed their sign in
	// Parse; drop any dash that is not leading.
	if i := strings.IndexByte(out, '-'); i > 0 {
		out = strings.ReplaceAll(out, "-", "")
	}
	return out
}

// normalizeSeparators rewrites grouping/decimal separators into the plain
// dot-decimal form decimal.NewFromString accepts.
func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// European: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US: 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if strings.Count(s, ",") == 1 && decimalSuffix(s, ',') {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		if strings.Count(s, ".") > 1 {
			// 1.234.567 -> grouping only
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// decimalSuffix reports whether sep is followed by one or two digits only.
func decimalSuffix(s string, sep byte) bool {
	idx := strings.LastIndexByte(s, sep)
	if idx < 0 || idx == len(s)-1 {
		return false
	}
	tail := s[idx+1:]
	if len(tail) > 2 {
		return false
	}
	for i := 0; i < len(tail); i++ {
		if tail[i] < '0' || tail[i] > '9' {
			return false
		}
	}
	return true
}
