package compare

import (
	"errors"

	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/schema"
)

// ErrNoQuotes is returned for an empty quote set; callers are expected to
// guard against it.
var ErrNoQuotes = errors.New("at least one quote is required")

type direction int

const (
	lowerIsBetter direction = iota + 1
	higherIsBetter
)

// orderable lists the only fields whose favourable direction is known.
var orderable = map[string]direction{
	schema.FieldPremium:        lowerIsBetter,
	schema.FieldCoverageAmount: higherIsBetter,
	schema.FieldSumInsured:     higherIsBetter,
}

// Engine builds side-by-side comparisons. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	registry   *schema.Registry
	normalizer *normalize.Normalizer
}

func NewEngine(registry *schema.Registry, normalizer *normalize.Normalizer) *Engine {
	return &Engine{registry: registry, normalizer: normalizer}
}

func (e *Engine) Compare(productName string, quotes []quote.Quote) (Result, error) {
	if len(quotes) == 0 {
		return Result{}, ErrNoQuotes
	}
	s, registered := e.registry.SchemaOrBasic(productName)
	normalized := e.normalizer.Normalize(quotes, s)

	res := Result{
		ProductName:      productName,
		SchemaRegistered: registered,
		Matrix:           buildMatrix(s, normalized),
		NormalizedQuotes: normalized,
		Metrics:          e.metrics(quotes, normalized, len(s.Fields)),
	}
	res.BestQuotes = bestQuotes(res.Metrics)

	if !registered {
		res.Insights = []Insight{{
			Type:     InsightBasicComparison,
			Severity: SeverityLow,
			Title:    "Basic comparison",
			Message:  "No field schema is registered for \"" + productName + "\"; only premium, coverage and deductible are compared.",
		}}
		return res, nil
	}
	res.Insights = e.insights(s, normalized, res.Metrics)
	return res, nil
}

func buildMatrix(s schema.Schema, quotes []normalize.Quote) Matrix {
	m := Matrix{Headers: make([]string, 0, len(quotes)+1), Rows: make([]Row, 0, len(s.Fields))}
	m.Headers = append(m.Headers, "Field")
	for _, q := range quotes {
		m.Headers = append(m.Headers, q.DisplayName)
	}
	for _, f := range s.Fields {
		row := Row{
			Field:    f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Critical: f.Critical,
			Values:   make([]string, len(quotes)),
			Raw:      make([]any, len(quotes)),
		}
		for i, q := range quotes {
			nf := q.Fields[f.Name]
			row.Values[i] = nf.Display
			row.Raw[i] = nf.Value
		}
		if dir, ok := orderable[f.Name]; ok {
			row.BestIndex = bestIndex(f.Name, quotes, dir)
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func bestIndex(field string, quotes []normalize.Quote, dir direction) *int {
	best := -1
	var bestVal float64
	for i, q := range quotes {
		v, ok := q.Number(field)
		if !ok {
			continue
		}
		if best < 0 || (dir == lowerIsBetter && v < bestVal) || (dir == higherIsBetter && v > bestVal) {
			best, bestVal = i, v
		}
	}
	if best < 0 {
		return nil
	}
	return &best
}

// metricValue prefers the normalized field; schemas that do not carry it
// fall back to resolving the basic definition directly.
func (e *Engine) metricValue(q quote.Quote, nq normalize.Quote, fieldName string) *float64 {
	if _, inSchema := nq.Fields[fieldName]; inSchema {
		if v, ok := nq.Number(fieldName); ok {
			return &v
		}
		return nil
	}
	f, _ := schema.Basic().Field(fieldName)
	if v, ok := normalize.ParseNumber(e.normalizer.Resolver().Resolve(q, f)); ok {
		return &v
	}
	return nil
}

func (e *Engine) metrics(quotes []quote.Quote, normalized []normalize.Quote, fieldCount int) []QuoteMetrics {
	out := make([]QuoteMetrics, len(normalized))
	for i, nq := range normalized {
		missing := nq.Missing()
		m := QuoteMetrics{
			QuoteID:        nq.QuoteID,
			DisplayName:    nq.DisplayName,
			Premium:        e.metricValue(quotes[i], nq, schema.FieldPremium),
			Coverage:       e.metricValue(quotes[i], nq, schema.FieldCoverageAmount),
			ResolvedFields: fieldCount - missing,
			MissingFields:  missing,
		}
		if fieldCount > 0 {
			m.Completeness = completeness(fieldCount-missing, fieldCount)
		}
		if m.Premium != nil && m.Coverage != nil && *m.Coverage > 0 {
			eff, ratio := premiumEfficiency(*m.Premium, *m.Coverage)
			m.PremiumEfficiency, m.CoverageRatio = &eff, ratio
		}
		out[i] = m
	}
	applyValueScores(out)
	return out
}

func bestQuotes(metrics []QuoteMetrics) BestQuotes {
	var b BestQuotes
	for i, m := range metrics {
		if m.Premium != nil && (b.LowestPremium == nil || *m.Premium < b.LowestPremium.Value) {
			b.LowestPremium = pick(m, i, *m.Premium)
		}
		if m.Coverage != nil && (b.HighestCoverage == nil || *m.Coverage > b.HighestCoverage.Value) {
			b.HighestCoverage = pick(m, i, *m.Coverage)
		}
		if m.PremiumEfficiency != nil && (b.BestValue == nil || *m.PremiumEfficiency < b.BestValue.Value) {
			b.BestValue = pick(m, i, *m.PremiumEfficiency)
		}
		if b.MostComplete == nil || float64(m.MissingFields) < b.MostComplete.Value {
			b.MostComplete = pick(m, i, float64(m.MissingFields))
		}
	}
	return b
}

func pick(m QuoteMetrics, idx int, v float64) *Pick {
	return &Pick{QuoteID: m.QuoteID, DisplayName: m.DisplayName, Index: idx, Value: v}
}
