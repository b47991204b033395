package statement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyChars = regexp.MustCompile(`[£$€¥₹A-Za-z]`)
	parenNegative = regexp.MustCompile(`^\(([0-9.]+)\)$`)
)

// parseAmount turns a raw amount field into a signed decimal. Currency
// symbols, letters, and thousands separators are stripped; parenthesised
// values follow the accounting convention and come back negative. Returns
// false for empty or unparseable fields.
func parseAmount(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" || trimmed == "--" {
		return decimal.Zero, false
	}

	cleaned := currencyChars.ReplaceAllString(trimmed, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, false
	}

	if m := parenNegative.FindStringSubmatch(cleaned); m != nil {
		value, err := decimal.NewFromString(m[1])
		if err != nil {
			return decimal.Zero, false
		}
		return value.Abs().Neg(), true
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
