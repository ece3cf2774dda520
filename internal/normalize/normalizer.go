package normalize

import (
	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/schema"
)

// Field is one resolved schema field of one quote. Value is nil when the
// field could not be resolved; Display is then NotSpecified.
type Field struct {
	Value    any              `json:"value"`
	Display  string           `json:"display"`
	Type     schema.FieldType `json:"type"`
	Critical bool             `json:"critical"`
	Source   Source           `json:"source"`
}

// Quote is the derived, per-request view of one quote against a schema.
// Every schema field has an entry.
type Quote struct {
	QuoteID     string           `json:"quote_id"`
	DisplayName string           `json:"display_name"`
	Fields      map[string]Field `json:"fields"`
}

// Number returns a field's numeric value when it resolved to something
// numeric.
func (q Quote) Number(name string) (float64, bool) {
	f, ok := q.Fields[name]
	if !ok || f.Value == nil {
		return 0, false
	}
	return ParseNumber(f.Value)
}

// Missing counts unresolved fields.
func (q Quote) Missing() int {
	n := 0
	for _, f := range q.Fields {
		if f.Value == nil {
			n++
		}
	}
	return n
}

type Normalizer struct {
	resolver  *Resolver
	formatter *Formatter
}

func NewNormalizer(resolver *Resolver, formatter *Formatter) *Normalizer {
	if formatter == nil {
		formatter = DefaultFormatter()
	}
	return &Normalizer{resolver: resolver, formatter: formatter}
}

func (n *Normalizer) Resolver() *Resolver   { return n.resolver }
func (n *Normalizer) Formatter() *Formatter { return n.formatter }

// Normalize resolves every schema field for every quote. It makes no external
// calls and is deterministic for identical inputs.
func (n *Normalizer) Normalize(quotes []quote.Quote, s schema.Schema) []Quote {
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, n.NormalizeOne(q, s))
	}
	return out
}

func (n *Normalizer) NormalizeOne(q quote.Quote, s schema.Schema) Quote {
	nq := Quote{QuoteID: q.ID, DisplayName: q.DisplayName(), Fields: make(map[string]Field, len(s.Fields))}
	for _, f := range s.Fields {
		raw, src := n.resolver.ResolveWithSource(q, f)
		nq.Fields[f.Name] = Field{
			Value:    canonical(raw, f.Type),
			Display:  n.formatter.Format(raw, f.Type),
			Type:     f.Type,
			Critical: f.Critical,
			Source:   src,
		}
	}
	return nq
}

// canonical converts numeric and boolean strings into typed values so
// downstream consumers can compare them. Values that do not parse are kept
// verbatim. A list with no non-blank items is missing, as its display says.
func canonical(v any, t schema.FieldType) any {
	if !present(v) {
		return nil
	}
	switch t {
	case schema.TypeList:
		if items := listItems(v); items != nil && len(items) == 0 {
			return nil
		}
	case schema.TypeCurrency, schema.TypeNumber, schema.TypePercentage:
		if f, ok := ParseNumber(v); ok {
			return f
		}
	case schema.TypeBoolean:
		if b, ok := ParseBool(v); ok {
			return b
		}
	}
	return v
}
