package normalize

import (
	"regexp"
	"strings"

	"github.com/joelkehle/quote-compare/internal/schema"
)

// TextExtractor pulls a field value out of free-text quote narrative. The
// default implementation is a heuristic pattern scan; callers that need a
// sturdier parser can substitute their own.
type TextExtractor interface {
	Extract(narrative string, field schema.Field, needles []string) (any, bool)
}

// scanWindow is how many characters after a label/alias match are searched.
const scanWindow = 100

var typePatterns = map[schema.FieldType]*regexp.Regexp{
	schema.TypeCurrency:   regexp.MustCompile(`(?:₹|\$|€|£|rs\.?|inr|usd)\s*([0-9]{1,3}(?:,[0-9]{2,3})+(?:\.[0-9]+)?|[0-9]+(?:\.[0-9]+)?)`),
	schema.TypeNumber:     regexp.MustCompile(`([0-9]+)`),
	schema.TypePercentage: regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*%?`),
}

// PatternExtractor locates a needle (label or alias) as a case-insensitive
// substring and applies the field type's pattern to the text that follows.
// Only currency, number and percentage fields are extractable; other types
// never resolve from narrative.
type PatternExtractor struct{}

func (PatternExtractor) Extract(narrative string, field schema.Field, needles []string) (any, bool) {
	pattern, ok := typePatterns[field.Type]
	if !ok || strings.TrimSpace(narrative) == "" {
		return nil, false
	}
	lower := strings.ToLower(narrative)
	for _, needle := range needles {
		n := strings.ToLower(strings.TrimSpace(needle))
		if n == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(lower[from:], n)
			if idx < 0 {
				break
			}
			start := from + idx + len(n)
			if v, ok := matchWindow(pattern, window(lower[start:])); ok {
				return v, true
			}
			from = start
		}
	}
	return nil, false
}

func window(s string) string {
	r := []rune(s)
	if len(r) > scanWindow {
		r = r[:scanWindow]
	}
	return string(r)
}

func matchWindow(pattern *regexp.Regexp, w string) (any, bool) {
	m := pattern.FindStringSubmatch(w)
	if m == nil {
		return nil, false
	}
	v, ok := parseAmountString(m[1])
	if !ok {
		return nil, false
	}
	return v, true
}
