package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/quote"
)

const systemPrompt = "You are a senior commercial insurance broker evaluating competing bids for a corporate buyer. Your judgments are advisory. Respond with strict JSON only."

type rubric struct {
	title    string
	focus    string
	criteria string
}

var rubrics = map[Dimension]rubric{
	DimensionCoverage: {
		title: "Coverage Analysis",
		focus: "breadth and adequacy of cover against the buyer's requirements",
		criteria: `Score each quote from 0 to 100 using these sub-criteria:
- Sum insured / limit adequacy versus the stated requirements: 30 points
- Breadth of covered perils and benefits: 25 points
- Exclusions and sub-limits (fewer and narrower scores higher): 20 points
- Add-on covers and extensions relevant to the buyer's industry: 15 points
- Clarity and completeness of the coverage wording: 10 points`,
	},
	DimensionPricing: {
		title: "Pricing Analysis",
		focus: "cost competitiveness and value for money",
		criteria: `Score each quote from 0 to 100 using these sub-criteria:
- Premium relative to the other quotes: 35 points
- Premium per unit of cover (value for money): 30 points
- Deductible and co-pay burden on the buyer: 20 points
- Fit with the stated budget: 15 points`,
	},
	DimensionTerms: {
		title: "Terms Analysis",
		focus: "contract terms and conditions",
		criteria: `Score each quote from 0 to 100 using these sub-criteria:
- Waiting periods and policy term flexibility: 25 points
- Claims process, settlement timelines and service commitments: 25 points
- Cancellation, renewal and premium revision terms: 20 points
- Warranties and conditions precedent (fewer onerous conditions scores higher): 20 points
- Payment terms: 10 points`,
	},
	DimensionCompliance: {
		title: "Compliance Analysis",
		focus: "regulatory and documentary compliance of each bid",
		criteria: `Score each quote from 0 to 100 using these sub-criteria:
- Completeness of mandatory information and documents: 35 points
- Alignment with applicable insurance regulation and statutory covers: 30 points
- Insurer standing, licensing and solvency indicators where stated: 20 points
- Consistency between the quote figures and the supporting documents: 15 points
Treat your view as advisory only.`,
	},
	DimensionRisk: {
		title: "Risk Analysis",
		focus: "residual risk the buyer retains if this quote is accepted",
		criteria: `Score each quote from 0 (lowest risk) to 100 (highest risk) using these sub-criteria:
- Coverage gaps and uninsured exposures: 35 points
- Insurer claims-paying reliability concerns: 25 points
- Ambiguous or missing terms that could cause disputes: 20 points
- Concentration, sub-limit and aggregate exhaustion exposure: 20 points
Higher scores mean MORE risk.`,
	},
}

const assessmentSchemaPrompt = `Return a JSON object of this shape:
{
  "quotes": [
    {
      "quote_id": "<id exactly as given>",
      "score": <number 0-100>,
      "label": "<short qualitative label>",
      "strengths": ["..."],
      "concerns": ["..."],
      "findings": {"<finding name>": "<detail>"}
    }
  ],
  "summary": "<two or three sentences across all quotes>"
}
Include one entry per quote.`

func analyzerPrompt(d Dimension, quotes []normalize.Quote, rfq quote.RFQContext) string {
	r := rubrics[d]
	return fmt.Sprintf(
		"%s.\nAssess the %s.\n\n%s\n\n%s\n\nRequest for quote:\n%s\n\nQuotes:\n%s",
		r.title,
		r.focus,
		r.criteria,
		assessmentSchemaPrompt,
		renderRFQ(rfq),
		renderQuotes(quotes),
	)
}

const synthesisSchemaPrompt = `Return a JSON object of this shape:
{
  "ranked_quotes": [
    {
      "quote_id": "<id>",
      "insurer_name": "<name>",
      "overall_score": <number 0-100>,
      "rank": <1 is best>,
      "label": "Highly Recommended|Recommended|Consider|Not Recommended",
      "strengths": ["..."],
      "weaknesses": ["..."],
      "best_for": "<the kind of buyer this quote suits>"
    }
  ],
  "executive_summary": "<one paragraph>",
  "top_recommendation": {"quote_id": "<id>", "confidence": "high|medium|low", "reasoning": "..."},
  "key_decision_factors": ["..."],
  "important_notes": ["..."]
}`

const synthesisFormula = `Compute each quote's overall score exactly as:
overall = coverage*0.30 + pricing*0.25 + terms*0.20 + compliance*0.15 + (100 - risk)*0.10
Risk is inverted because lower risk is better.
Label each quote by overall score: >= 90 "Highly Recommended", >= 75 "Recommended", >= 60 "Consider", otherwise "Not Recommended".
Rank quotes by overall score, highest first.`

func synthesisPrompt(assessments []Assessment, quotes []normalize.Quote, rfq quote.RFQContext) string {
	var sb strings.Builder
	for _, a := range assessments {
		fmt.Fprintf(&sb, "%s", strings.ToUpper(string(a.Dimension)))
		if a.Degraded {
			sb.WriteString(" (unavailable, neutral scores)")
		}
		sb.WriteString(":\n")
		if a.Summary != "" {
			fmt.Fprintf(&sb, "  summary: %s\n", a.Summary)
		}
		for _, q := range a.Quotes {
			fmt.Fprintf(&sb, "  - %s: score %.1f, %s", q.QuoteID, q.Score, q.Label)
			if len(q.Strengths) > 0 {
				fmt.Fprintf(&sb, "; strengths: %s", strings.Join(q.Strengths, "; "))
			}
			if len(q.Concerns) > 0 {
				fmt.Fprintf(&sb, "; concerns: %s", strings.Join(q.Concerns, "; "))
			}
			sb.WriteString("\n")
		}
	}
	return fmt.Sprintf(
		"Synthesis.\nCombine the five dimension assessments into one ranked recommendation.\n\n%s\n\n%s\n\nRequest for quote:\n%s\n\nQuotes:\n%s\nDimension assessments:\n%s",
		synthesisFormula,
		synthesisSchemaPrompt,
		renderRFQ(rfq),
		renderQuoteIndex(quotes),
		sb.String(),
	)
}

func renderRFQ(rfq quote.RFQContext) string {
	var sb strings.Builder
	line := func(k, v string) {
		if strings.TrimSpace(v) != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", k, v)
		}
	}
	line("Product", rfq.ProductName)
	line("Title", rfq.Title)
	line("Company", rfq.CompanyName)
	line("Industry", rfq.Industry)
	if rfq.EmployeeCount > 0 {
		line("Employees", fmt.Sprint(rfq.EmployeeCount))
	}
	line("Coverage requirements", rfq.CoverageRequirements)
	if rfq.Budget != nil {
		line("Budget", normalize.DefaultFormatter().Currency(*rfq.Budget))
	}
	if rfq.Deadline != nil {
		line("Deadline", rfq.Deadline.Format("2006-01-02"))
	}
	line("Notes", rfq.Notes)
	if sb.Len() == 0 {
		return "- (no details provided)\n"
	}
	return sb.String()
}

func renderQuotes(quotes []normalize.Quote) string {
	var sb strings.Builder
	for _, q := range quotes {
		fmt.Fprintf(&sb, "Quote %s (%s):\n", q.QuoteID, q.DisplayName)
		names := make([]string, 0, len(q.Fields))
		for name := range q.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			f := q.Fields[name]
			marker := ""
			if f.Critical {
				marker = " [critical]"
			}
			fmt.Fprintf(&sb, "  - %s%s: %s\n", name, marker, f.Display)
		}
	}
	return sb.String()
}

func renderQuoteIndex(quotes []normalize.Quote) string {
	var sb strings.Builder
	for _, q := range quotes {
		fmt.Fprintf(&sb, "- %s: %s\n", q.QuoteID, q.DisplayName)
	}
	return sb.String()
}
