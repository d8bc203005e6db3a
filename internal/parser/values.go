package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order; first success wins.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// ParseDate accepts the supported calendar date notations.
func ParseDate(s string) (domain.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateFromTime(t), nil
		}
	}
	return domain.Date{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseDecimal parses a numeric cell tolerating space (and non-breaking
// space) as thousands separator and either comma or dot as decimal
// separator. When only a comma is present it is the decimal separator;
// when both are present the comma is thousands: "1 070,00" -> 1070.00,
// "1,130.00" -> 1130.00.
func ParseDecimal(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(" ", "", " ", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty number")
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unrecognized number %q", s)
	}
	return d, nil
}

// ParseQuantity parses an integral day count in any supported numeric
// notation.
func ParseQuantity(s string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("quantity %q is not a whole number", s)
	}
	return d.IntPart(), nil
}

var boolWords = map[string]bool{
	"yes": true, "oui": true, "true": true, "1": true, "y": true, "o": true,
	"no": false, "non": false, "false": false, "0": false, "n": false,
}

// ParseBool parses a boolean cell from the fixed vocabulary, returning the
// caller-supplied default for anything else (including blanks).
func ParseBool(s string, def bool) bool {
	if v, ok := boolWords[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return def
}
