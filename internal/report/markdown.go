package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joelkehle/quote-compare/internal/analysis"
	"github.com/joelkehle/quote-compare/internal/compare"
	"github.com/joelkehle/quote-compare/internal/normalize"
)

const Disclaimer = "_AI-generated assessments are advisory and do not constitute a regulatory or legal opinion. Verify all figures against the original quote documents._"

// Markdown renders a comparison, an analysis, or both. Either may be nil.
func Markdown(cmp *compare.Result, an *analysis.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Insurance Quote Comparison Report\n\n")
	writeHeader(&b, cmp, an)

	if cmp != nil {
		writeComparison(&b, cmp, normalize.DefaultFormatter())
	}
	if an != nil {
		writeAnalysis(&b, an)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, cmp *compare.Result, an *analysis.Result) {
	product := ""
	switch {
	case cmp != nil:
		product = cmp.ProductName
	case an != nil:
		product = an.ProductName
	}
	if product != "" {
		fmt.Fprintf(b, "- Product: %s\n", product)
	}
	if cmp != nil && !cmp.SchemaRegistered {
		fmt.Fprintf(b, "- Comparison mode: basic (premium, coverage, deductible)\n")
	}
	if an != nil {
		if an.RFQID != "" {
			fmt.Fprintf(b, "- RFQ: %s\n", an.RFQID)
		}
		fmt.Fprintf(b, "- Analysis run: %s\n", an.RunID)
		if !an.CompletedAt.IsZero() {
			fmt.Fprintf(b, "- Date: %s\n", an.CompletedAt.Format(time.RFC3339))
		}
	}
	b.WriteString("\n")
}

func writeComparison(b *strings.Builder, cmp *compare.Result, f *normalize.Formatter) {
	fmt.Fprintf(b, "## Best in Category\n\n")
	bq := cmp.BestQuotes
	writePick(b, "Lowest premium", bq.LowestPremium, f.Currency)
	writePick(b, "Highest coverage", bq.HighestCoverage, f.Currency)
	writePick(b, "Best value", bq.BestValue, func(v float64) string {
		return f.Currency(v) + " per " + f.Currency(100000) + " of cover"
	})
	writePick(b, "Most complete", bq.MostComplete, func(v float64) string {
		if v == 0 {
			return "no missing fields"
		}
		return humanize.Comma(int64(v)) + " missing " + plural(int(v), "field")
	})
	b.WriteString("\n")

	fmt.Fprintf(b, "## Side-by-Side Comparison\n\n")
	writeRow(b, cmp.Matrix.Headers)
	sep := make([]string, len(cmp.Matrix.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(b, sep)
	for _, row := range cmp.Matrix.Rows {
		label := row.Label
		if row.Critical {
			label += " *"
		}
		cells := append([]string{label}, row.Values...)
		if row.BestIndex != nil {
			cells[*row.BestIndex+1] = "**" + cells[*row.BestIndex+1] + "**"
		}
		writeRow(b, cells)
	}
	b.WriteString("\n_* critical field; **bold** marks the most favourable value._\n\n")

	fmt.Fprintf(b, "## Value Metrics\n\n")
	writeRow(b, []string{"Quote", "Premium per " + f.Currency(100000) + " cover", "Value score", "Completeness"})
	writeRow(b, []string{"---", "---", "---", "---"})
	for _, m := range cmp.Metrics {
		eff, score := normalize.NotSpecified, normalize.NotSpecified
		if m.PremiumEfficiency != nil {
			eff = f.Currency(*m.PremiumEfficiency)
		}
		if m.ValueScore != nil {
			score = fmt.Sprintf("%.0f / 100", *m.ValueScore)
		}
		writeRow(b, []string{m.DisplayName, eff, score, fmt.Sprintf("%.0f%%", m.Completeness)})
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "## Insights\n\n")
	if len(cmp.Insights) == 0 {
		b.WriteString("- No notable differences detected.\n")
	}
	for _, in := range cmp.Insights {
		fmt.Fprintf(b, "- **[%s] %s**: %s\n", strings.ToUpper(string(in.Severity)), in.Title, in.Message)
	}
	b.WriteString("\n")
}

func writePick(b *strings.Builder, label string, p *compare.Pick, format func(float64) string) {
	if p == nil {
		fmt.Fprintf(b, "- %s: not available\n", label)
		return
	}
	fmt.Fprintf(b, "- %s: **%s** (%s)\n", label, p.DisplayName, format(p.Value))
}

func writeAnalysis(b *strings.Builder, an *analysis.Result) {
	syn := an.OrchestratorSynthesis
	fmt.Fprintf(b, "## AI Recommendation\n\n")
	b.WriteString(Disclaimer + "\n\n")
	if syn.Fallback {
		b.WriteString("> AI synthesis was unavailable for this run. The ranking below is a neutral placeholder.\n\n")
	}
	if len(an.DegradedDimensions) > 0 {
		names := make([]string, len(an.DegradedDimensions))
		for i, d := range an.DegradedDimensions {
			names[i] = string(d)
		}
		fmt.Fprintf(b, "> Degraded dimensions: %s.\n\n", strings.Join(names, ", "))
	}

	fmt.Fprintf(b, "### Executive Summary\n\n%s\n\n", syn.ExecutiveSummary)

	if tr := syn.TopRecommendation; tr.QuoteID != "" {
		fmt.Fprintf(b, "### Top Recommendation\n\n**%s** (confidence: %s). %s\n\n", tr.QuoteID, tr.Confidence, tr.Reasoning)
	}

	fmt.Fprintf(b, "### Ranking\n\n")
	writeRow(b, []string{"Rank", "Quote", "Overall", "Label", "Best for"})
	writeRow(b, []string{"---", "---", "---", "---", "---"})
	for _, rq := range syn.RankedQuotes {
		name := rq.QuoteID
		if rq.InsurerName != "" {
			name = rq.InsurerName + " (" + rq.QuoteID + ")"
		}
		writeRow(b, []string{humanize.Ordinal(rq.Rank), name, fmt.Sprintf("%.1f", rq.OverallScore), rq.Label, rq.BestFor})
	}
	b.WriteString("\n")

	for _, rq := range syn.RankedQuotes {
		if len(rq.Strengths) == 0 && len(rq.Weaknesses) == 0 {
			continue
		}
		fmt.Fprintf(b, "**%s**\n\n", rq.QuoteID)
		for _, s := range rq.Strengths {
			fmt.Fprintf(b, "- Strength: %s\n", s)
		}
		for _, w := range rq.Weaknesses {
			fmt.Fprintf(b, "- Weakness: %s\n", w)
		}
		b.WriteString("\n")
	}

	writeList(b, "Key Decision Factors", syn.KeyDecisionFactors)
	writeList(b, "Important Notes", syn.ImportantNotes)

	if len(syn.ScoreAudit) > 0 {
		fmt.Fprintf(b, "### Score Audit\n\n")
		writeRow(b, []string{"Quote", "Reported", "Formula", "Delta", "Consistent"})
		writeRow(b, []string{"---", "---", "---", "---", "---"})
		for _, a := range syn.ScoreAudit {
			ok := "yes"
			if !a.Consistent {
				ok = "**no**"
			}
			writeRow(b, []string{a.QuoteID, fmt.Sprintf("%.1f", a.Reported), fmt.Sprintf("%.1f", a.Computed), fmt.Sprintf("%+.1f", a.Delta), ok})
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "## Dimension Assessments\n\n")
	for _, d := range analysis.Dimensions {
		a := an.Assessment(d)
		title := strings.ToUpper(string(d)[:1]) + string(d)[1:]
		if a.Degraded {
			title += " (unavailable)"
		}
		fmt.Fprintf(b, "### %s\n\n", title)
		if a.Summary != "" {
			fmt.Fprintf(b, "%s\n\n", a.Summary)
		}
		writeRow(b, []string{"Quote", "Score", "Label", "Strengths", "Concerns"})
		writeRow(b, []string{"---", "---", "---", "---", "---"})
		for _, q := range a.Quotes {
			writeRow(b, []string{q.QuoteID, fmt.Sprintf("%.0f", q.Score), q.Label, strings.Join(q.Strengths, "; "), strings.Join(q.Concerns, "; ")})
		}
		b.WriteString("\n")
	}
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" " + cellEscaper.Replace(c) + " |")
	}
	b.WriteString("\n")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
