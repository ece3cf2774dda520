package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/schema"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(NewResolver(schema.Default()), DefaultFormatter())
}

func TestNormalizeCoversEverySchemaField(t *testing.T) {
	n := newTestNormalizer()
	reg := schema.Default()

	quotes := []quote.Quote{
		{ID: "empty"},
		{ID: "full", Premium: ptr(120000), CoverageAmount: ptr(5000000), AdditionalTerms: "Co-payment 10%"},
	}
	for _, product := range append(reg.Products(), "Unknown Product") {
		s, _ := reg.SchemaOrBasic(product)
		out := n.Normalize(quotes, s)
		require.Len(t, out, len(quotes))
		for _, nq := range out {
			assert.Len(t, nq.Fields, len(s.Fields), product)
			for _, name := range s.FieldNames() {
				f, ok := nq.Fields[name]
				require.True(t, ok, "%s missing %s", product, name)
				assert.NotEmpty(t, f.Display)
			}
		}
	}

	assert.Empty(t, n.Normalize(nil, schema.Basic()))
}

func TestUnresolvedDeductibleIsNullAndNotSpecified(t *testing.T) {
	n := newTestNormalizer()
	out := n.NormalizeOne(quote.Quote{ID: "q1", InsurerName: "Acme"}, schema.Basic())

	f := out.Fields["deductible"]
	assert.Nil(t, f.Value)
	assert.Equal(t, NotSpecified, f.Display)
	assert.Equal(t, SourceNone, f.Source)
	assert.Equal(t, 3, out.Missing())
	assert.Equal(t, "Acme", out.DisplayName)
}

func TestNormalizeCanonicalisesNumbersAndFlags(t *testing.T) {
	n := newTestNormalizer()
	s := schema.Schema{Product: "x", Fields: []schema.Field{
		{Name: "premium", Label: "Premium", Type: schema.TypeCurrency, Critical: true},
		{Name: "maternity_cover", Label: "Maternity Cover", Type: schema.TypeBoolean},
		{Name: "exclusions", Label: "Exclusions", Type: schema.TypeList},
		{Name: "retroactive_date", Label: "Retroactive Date", Type: schema.TypeDate},
		{Name: "claim_settlement_ratio", Label: "CSR", Type: schema.TypePercentage},
	}}
	q := quote.Quote{ID: "q", Attributes: map[string]any{
		"premium":                "₹25,000",
		"maternity_cover":        "Covered",
		"exclusions":             []any{"War", "Nuclear", ""},
		"retroactive_date":       "2024-04-01",
		"claim_settlement_ratio": 97.456,
	}}
	out := n.NormalizeOne(q, s)

	assert.Equal(t, 25000.0, out.Fields["premium"].Value)
	assert.Equal(t, "₹25,000", out.Fields["premium"].Display)
	assert.True(t, out.Fields["premium"].Critical)
	assert.Equal(t, true, out.Fields["maternity_cover"].Value)
	assert.Equal(t, "Yes", out.Fields["maternity_cover"].Display)
	assert.Equal(t, "War, Nuclear", out.Fields["exclusions"].Display)
	assert.Equal(t, "1/4/2024", out.Fields["retroactive_date"].Display)
	assert.Equal(t, "97.46%", out.Fields["claim_settlement_ratio"].Display)

	v, ok := out.Number("premium")
	assert.True(t, ok)
	assert.Equal(t, 25000.0, v)
	_, ok = out.Number("exclusions")
	assert.False(t, ok)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := newTestNormalizer()
	s, _ := schema.Default().Schema("Group Health Insurance")
	q := quote.Quote{ID: "q", Attributes: map[string]any{"Sum Insured": 100.0, "sum_insured": 200.0, "coverage": 300.0}}

	first := n.Normalize([]quote.Quote{q}, s)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, n.Normalize([]quote.Quote{q}, s))
	}
}

func TestFormatter(t *testing.T) {
	f := DefaultFormatter()

	assert.Equal(t, NotSpecified, f.Format(nil, schema.TypeText))
	assert.Equal(t, NotSpecified, f.Format("   ", schema.TypeCurrency))
	assert.Equal(t, "₹25,000", f.Format(25000.0, schema.TypeCurrency))
	assert.Equal(t, "₹999.5", f.Format("999.50", schema.TypeCurrency))
	assert.Equal(t, "NIL", f.Format("NIL", schema.TypeCurrency))
	assert.Equal(t, "15.00%", f.Format(15, schema.TypePercentage))
	assert.Equal(t, "No", f.Format(false, schema.TypeBoolean))
	assert.Equal(t, "maybe", f.Format("maybe", schema.TypeBoolean))
	assert.Equal(t, "a, b", f.Format([]string{"a", " b "}, schema.TypeList))
	assert.Equal(t, "15/10/2026", f.Format(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), schema.TypeDate))
	assert.Equal(t, "sometime soon", f.Format("sometime soon", schema.TypeDate))
	assert.Equal(t, "1500000", f.Format(1500000.0, schema.TypeText))
}

func TestEmptyListIsMissing(t *testing.T) {
	n := newTestNormalizer()
	s := schema.Schema{Product: "x", Fields: []schema.Field{
		{Name: "exclusions", Label: "Exclusions", Type: schema.TypeList, Critical: true},
		{Name: "add_on_covers", Label: "Add-on Covers", Type: schema.TypeList},
	}}
	out := n.NormalizeOne(quote.Quote{ID: "q1", Attributes: map[string]any{
		"exclusions":    []any{},
		"add_on_covers": []any{"", nil},
	}}, s)

	for _, name := range []string{"exclusions", "add_on_covers"} {
		f := out.Fields[name]
		assert.Nil(t, f.Value, name)
		assert.Equal(t, NotSpecified, f.Display, name)
	}
	assert.Equal(t, 2, out.Missing())
}
