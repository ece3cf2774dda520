package compare

import (
	"fmt"

	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/schema"
)

const (
	premiumSpreadHigh   = 30.0
	premiumSpreadMedium = 15.0
	valueSpreadMedium   = 30.0
)

// insights applies the fixed rule set. Rules are independent; any number
// may fire.
func (e *Engine) insights(s schema.Schema, quotes []normalize.Quote, metrics []QuoteMetrics) []Insight {
	out := []Insight{}
	if in, ok := e.premiumSpreadInsight(metrics); ok {
		out = append(out, in)
	}
	out = append(out, missingCriticalInsights(s, quotes)...)
	if in, ok := valueSpreadInsight(metrics); ok {
		out = append(out, in)
	}
	return out
}

func (e *Engine) premiumSpreadInsight(metrics []QuoteMetrics) (Insight, bool) {
	var premiums []float64
	for _, m := range metrics {
		if m.Premium != nil {
			premiums = append(premiums, *m.Premium)
		}
	}
	spread, ok := spreadPct(premiums)
	if !ok {
		return Insight{}, false
	}
	sev := SeverityLow
	switch {
	case spread > premiumSpreadHigh:
		sev = SeverityHigh
	case spread > premiumSpreadMedium:
		sev = SeverityMedium
	}
	lo, hi := premiums[0], premiums[0]
	for _, p := range premiums {
		lo, hi = min(lo, p), max(hi, p)
	}
	f := e.normalizer.Formatter()
	return Insight{
		Type:     InsightPremiumSpread,
		Severity: sev,
		Title:    "Premium spread",
		Message: fmt.Sprintf("Premiums range from %s to %s, a spread of %.1f%% of the average premium.",
			f.Currency(lo), f.Currency(hi), spread),
		Field: schema.FieldPremium,
	}, true
}

func missingCriticalInsights(s schema.Schema, quotes []normalize.Quote) []Insight {
	if len(quotes) == 0 {
		return nil
	}
	var out []Insight
	for _, f := range s.Fields {
		if !f.Critical {
			continue
		}
		missingEverywhere := true
		for _, q := range quotes {
			if q.Fields[f.Name].Value != nil {
				missingEverywhere = false
				break
			}
		}
		if missingEverywhere {
			out = append(out, Insight{
				Type:     InsightMissingCritical,
				Severity: SeverityHigh,
				Title:    "Critical field missing from every quote",
				Message:  fmt.Sprintf("No quote specifies %s. Ask bidders to confirm it before deciding.", f.Label),
				Field:    f.Name,
			})
		}
	}
	return out
}

func valueSpreadInsight(metrics []QuoteMetrics) (Insight, bool) {
	var scores []float64
	for _, m := range metrics {
		if m.ValueScore != nil {
			scores = append(scores, *m.ValueScore)
		}
	}
	if len(scores) < 2 {
		return Insight{}, false
	}
	lo, hi := scores[0], scores[0]
	for _, v := range scores {
		lo, hi = min(lo, v), max(hi, v)
	}
	if hi-lo <= valueSpreadMedium {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightValueSpread,
		Severity: SeverityMedium,
		Title:    "Wide value gap",
		Message:  fmt.Sprintf("Value scores differ by %.0f points; cost per unit of cover varies sharply between bidders.", hi-lo),
	}, true
}
