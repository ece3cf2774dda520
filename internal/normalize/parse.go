package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountPattern = regexp.MustCompile(`^([0-9][0-9,]*(?:\.[0-9]+)?)\s*(lakhs?|lacs?|crores?|cr|k|mn|million)?$`)
	amountPrefix  = []string{"₹", "$", "€", "£", "rs.", "rs", "inr", "usd", "eur", "gbp"}
	multipliers   = map[string]int64{
		"lakh": 100000, "lakhs": 100000, "lac": 100000, "lacs": 100000,
		"crore": 10000000, "crores": 10000000, "cr": 10000000,
		"k": 1000, "mn": 1000000, "million": 1000000,
	}
)

// ParseNumber coerces a raw attribute into a float. Strings may carry a
// currency prefix, digit-group separators, a trailing percent sign or an
// Indian/western magnitude word ("5 lakh", "1.2 crore", "250k").
func ParseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case decimal.Decimal:
		return t.InexactFloat64(), true
	case string:
		return parseAmountString(t)
	}
	return 0, false
}

func parseAmountString(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range amountPrefix {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(strings.TrimPrefix(s, p))
			break
		}
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	s = strings.TrimSuffix(s, "/-")
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	if mult, ok := multipliers[m[2]]; ok {
		d = d.Mul(decimal.NewFromInt(mult))
	}
	return d.InexactFloat64(), true
}

var (
	truthy = map[string]bool{"yes": true, "y": true, "true": true, "covered": true, "included": true, "available": true, "applicable": true}
	falsy  = map[string]bool{"no": true, "n": true, "false": true, "not covered": true, "excluded": true, "not available": true, "nil": true, "not applicable": true, "na": true}
)

// ParseBool interprets the common yes/no vocabularies used in quotes.
func ParseBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if truthy[s] {
			return true, true
		}
		if falsy[s] {
			return false, true
		}
	}
	return false, false
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}
	return true
}
