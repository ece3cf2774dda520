package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/joelkehle/quote-compare/internal/schema"
)

// NotSpecified is the display string for unresolved fields. It is never
// empty so a renderer cannot mistake "missing" for "blank text".
const NotSpecified = "Not Specified"

// Formatter renders raw field values for display according to field type.
type Formatter struct {
	printer    *message.Printer
	symbol     string
	dateLayout string
}

// NewFormatter builds a formatter for a BCP 47 locale tag and currency
// symbol. Unknown tags fall back to English grouping.
func NewFormatter(locale, currencySymbol, dateLayout string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if dateLayout == "" {
		dateLayout = "2/1/2006"
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: currencySymbol, dateLayout: dateLayout}
}

// DefaultFormatter formats for en-IN with rupee amounts.
func DefaultFormatter() *Formatter {
	return NewFormatter("en-IN", "₹", "2/1/2006")
}

func (f *Formatter) Format(v any, t schema.FieldType) string {
	if !present(v) {
		return NotSpecified
	}
	switch t {
	case schema.TypeCurrency:
		if n, ok := ParseNumber(v); ok {
			return f.Currency(n)
		}
	case schema.TypeNumber:
		if n, ok := ParseNumber(v); ok {
			return f.printer.Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
		}
	case schema.TypePercentage:
		if n, ok := ParseNumber(v); ok {
			return fmt.Sprintf("%.2f%%", n)
		}
	case schema.TypeBoolean:
		if b, ok := ParseBool(v); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	case schema.TypeList:
		if items := listItems(v); items != nil {
			if len(items) == 0 {
				return NotSpecified
			}
			return strings.Join(items, ", ")
		}
	case schema.TypeDate:
		if ts, ok := parseDate(v); ok {
			return ts.Format(f.dateLayout)
		}
	}
	return plainText(v)
}

// Currency renders an amount with the configured symbol and locale digit
// grouping.
func (f *Formatter) Currency(n float64) string {
	return f.symbol + f.printer.Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
}

func listItems(v any) []string {
	switch t := v.(type) {
	case []string:
		return nonEmpty(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if present(item) {
				out = append(out, plainText(item))
			}
		}
		return out
	}
	return nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func plainText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case []any, []string:
		return strings.Join(listItems(t), ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+plainText(t[k]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(t)
	}
}
