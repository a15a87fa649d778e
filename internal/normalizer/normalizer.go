// Package normalizer provides text, amount, date and month canonicalization
// primitives used throughout the application. All fuzzy comparisons in the
// matcher and analytics layers go through Normalize so that accents and
// casing never affect matching.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a string and strips diacritics (NFD decomposition
// followed by removal of combining marks). It returns "" for input that
// cannot be transformed.
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		return ""
	}
	return out
}

var amountToken = regexp.MustCompile(`(?i)(?:r\$\s*)?(\d[\d.,]*)\s*([km])?\b`)

// ParseAmount parses a Brazilian-format monetary string into a decimal value.
// Accepted inputs include "70", "70,50", "1.234,56", "R$ 70", "70k" and
// "2.5m". When the numeric token contains a comma, the comma is the decimal
// separator and dots are thousand separators; otherwise the dot is the
// decimal separator. The "k" suffix multiplies by one thousand and "m" by
// one million. The second return value is false when no numeric token is
// present.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	m := amountToken.FindStringSubmatch(raw)
	if m == nil {
		return decimal.Zero, false
	}
	return parseAmountToken(m[1], m[2])
}

// ParseLastAmount parses the last numeric token in a string. The debt
// matcher falls back to it when an utterance has no " para " pivot.
func ParseLastAmount(raw string) (decimal.Decimal, bool) {
	ms := amountToken.FindAllStringSubmatch(raw, -1)
	if len(ms) == 0 {
		return decimal.Zero, false
	}
	m := ms[len(ms)-1]
	return parseAmountToken(m[1], m[2])
}

func parseAmountToken(token, suffix string) (decimal.Decimal, bool) {
	if strings.Contains(token, ",") {
		// Comma decimal, dots are thousand separators.
		token = strings.ReplaceAll(token, ".", "")
		token = strings.ReplaceAll(token, ",", ".")
	}
	value, err := decimal.NewFromString(strings.Trim(token, "."))
	if err != nil {
		return decimal.Zero, false
	}
	switch strings.ToLower(suffix) {
	case "k":
		value = value.Mul(decimal.NewFromInt(1000))
	case "m":
		value = value.Mul(decimal.NewFromInt(1000000))
	}
	return value, true
}
