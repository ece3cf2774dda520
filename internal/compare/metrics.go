package compare

import (
	"github.com/shopspring/decimal"
)

// efficiencyUnit is the coverage unit premium efficiency is quoted per.
var efficiencyUnit = decimal.NewFromInt(100000)

var hundred = decimal.NewFromInt(100)

// premiumEfficiency returns the cost per 100,000 of coverage and the inverse
// coverage ratio. The ratio is nil for a zero premium. Callers guarantee
// coverage > 0.
func premiumEfficiency(premium, coverage float64) (float64, *float64) {
	p := decimal.NewFromFloat(premium)
	c := decimal.NewFromFloat(coverage)
	eff := p.Mul(efficiencyUnit).Div(c).Round(4).InexactFloat64()
	if p.IsZero() {
		return eff, nil
	}
	ratio := c.Div(p).Round(4).InexactFloat64()
	return eff, &ratio
}

// applyValueScores min-max normalises premium efficiency across the quotes
// that have one, inverted so the cheapest cover scores 100. A degenerate
// range scores every eligible quote 100.
func applyValueScores(metrics []QuoteMetrics) {
	var lo, hi decimal.Decimal
	seen := false
	for _, m := range metrics {
		if m.PremiumEfficiency == nil {
			continue
		}
		v := decimal.NewFromFloat(*m.PremiumEfficiency)
		if !seen || v.LessThan(lo) {
			lo = v
		}
		if !seen || v.GreaterThan(hi) {
			hi = v
		}
		seen = true
	}
	if !seen {
		return
	}
	span := hi.Sub(lo)
	for i := range metrics {
		if metrics[i].PremiumEfficiency == nil {
			continue
		}
		score := 100.0
		if span.IsPositive() {
			v := decimal.NewFromFloat(*metrics[i].PremiumEfficiency)
			score = hi.Sub(v).Div(span).Mul(hundred).Round(2).InexactFloat64()
		}
		metrics[i].ValueScore = &score
	}
}

func completeness(resolved, total int) float64 {
	return decimal.NewFromInt(int64(resolved)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(1).InexactFloat64()
}

// spreadPct is (max-min) as a percentage of the mean.
func spreadPct(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	lo, hi := values[0], values[0]
	sum := decimal.Zero
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(values))))
	if !mean.IsPositive() {
		return 0, false
	}
	return decimal.NewFromFloat(hi - lo).Div(mean).Mul(hundred).Round(2).InexactFloat64(), true
}
