package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/joelkehle/quote-compare/internal/metrics"
	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/quote"
)

// auditTolerance is the largest |reported - computed| still considered
// consistent with the weighted formula.
const auditTolerance = 5.0

var genericDecisionFactors = []string{
	"Compare premiums across all quotes",
	"Review coverage limits and sub-limits",
	"Check exclusions and waiting periods",
	"Verify insurer credentials and claim settlement record",
}

type rankedReply struct {
	QuoteID      string   `json:"quote_id"`
	InsurerName  string   `json:"insurer_name"`
	OverallScore float64  `json:"overall_score"`
	Rank         float64  `json:"rank"`
	Label        string   `json:"label"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	BestFor      string   `json:"best_for"`
}

type synthesisReply struct {
	RankedQuotes       []rankedReply     `json:"ranked_quotes"`
	ExecutiveSummary   string            `json:"executive_summary"`
	TopRecommendation  TopRecommendation `json:"top_recommendation"`
	KeyDecisionFactors []string          `json:"key_decision_factors"`
	ImportantNotes     []string          `json:"important_notes"`
}

func (o *Orchestrator) synthesize(ctx context.Context, assessments []Assessment, quotes []normalize.Quote, rfq quote.RFQContext) (Synthesis, error) {
	if o.completer == nil {
		return Synthesis{}, errors.New("no completion backend configured")
	}
	reply, err := o.completer.Complete(ctx, o.opts.request(synthesisPrompt(assessments, quotes, rfq)))
	if err != nil {
		return Synthesis{}, fmt.Errorf("synthesis completion: %w", err)
	}
	var parsed synthesisReply
	if err := decodeReply("synthesis", reply, synthesisReplySchema, &parsed); err != nil {
		return Synthesis{}, err
	}
	if len(quotes) > 0 && len(parsed.RankedQuotes) == 0 {
		return Synthesis{}, &ReplyError{Dimension: "synthesis", Reason: "reply ranked no quotes"}
	}

	syn := Synthesis{
		RankedQuotes:       make([]RankedQuote, 0, len(parsed.RankedQuotes)),
		ExecutiveSummary:   strings.TrimSpace(parsed.ExecutiveSummary),
		TopRecommendation:  parsed.TopRecommendation,
		KeyDecisionFactors: nonNil(parsed.KeyDecisionFactors),
		ImportantNotes:     nonNil(parsed.ImportantNotes),
	}
	ids := newQuoteIndex(quotes)
	seen := map[string]bool{}
	for i, r := range parsed.RankedQuotes {
		id, ok := ids.lookup(r.QuoteID, r.InsurerName)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		rq := RankedQuote{
			QuoteID:      id,
			InsurerName:  r.InsurerName,
			OverallScore: clampScore(r.OverallScore),
			Rank:         int(r.Rank),
			Label:        strings.TrimSpace(r.Label),
			Strengths:    nonNil(r.Strengths),
			Weaknesses:   nonNil(r.Weaknesses),
			BestFor:      r.BestFor,
		}
		if rq.Rank <= 0 {
			rq.Rank = i + 1
		}
		if rq.Label == "" {
			rq.Label = RecommendationLabel(rq.OverallScore)
		}
		syn.RankedQuotes = append(syn.RankedQuotes, rq)
	}
	if len(quotes) > 0 && len(syn.RankedQuotes) == 0 {
		return Synthesis{}, &ReplyError{Dimension: "synthesis", Reason: "reply ranked none of the submitted quotes"}
	}
	slices.SortStableFunc(syn.RankedQuotes, func(a, b RankedQuote) int { return a.Rank - b.Rank })
	for i := range syn.RankedQuotes {
		syn.RankedQuotes[i].Rank = i + 1
	}

	// Quotes the model left out are appended with the formula score so the
	// ranking still covers the full set.
	for _, q := range quotes {
		if seen[q.QuoteID] {
			continue
		}
		seen[q.QuoteID] = true
		score := round2(compositeScore(q.QuoteID, assessments))
		syn.RankedQuotes = append(syn.RankedQuotes, RankedQuote{
			QuoteID:      q.QuoteID,
			InsurerName:  q.DisplayName,
			OverallScore: score,
			Rank:         len(syn.RankedQuotes) + 1,
			Label:        RecommendationLabel(score),
			Strengths:    []string{},
			Weaknesses:   []string{},
		})
		syn.ImportantNotes = append(syn.ImportantNotes,
			fmt.Sprintf("%s was not ranked by the AI synthesis; its score was computed from the dimension scores.", q.DisplayName))
	}

	// The top recommendation must name a submitted quote; otherwise it
	// follows the ranking.
	if id, ok := ids.lookup(syn.TopRecommendation.QuoteID, ""); ok {
		syn.TopRecommendation.QuoteID = id
	} else if len(syn.RankedQuotes) > 0 {
		syn.TopRecommendation.QuoteID = syn.RankedQuotes[0].QuoteID
	}

	o.audit(&syn, assessments, quotes, rfq)
	return syn, nil
}

// audit recomputes the weighted formula for every ranked quote it knows and
// records the difference. The model's ranking is left untouched.
func (o *Orchestrator) audit(syn *Synthesis, assessments []Assessment, quotes []normalize.Quote, rfq quote.RFQContext) {
	known := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		known[q.QuoteID] = true
	}
	syn.ScoreAudit = []ScoreAudit{}
	var inconsistent []string
	for _, rq := range syn.RankedQuotes {
		if !known[rq.QuoteID] {
			continue
		}
		computed := round2(compositeScore(rq.QuoteID, assessments))
		delta := round2(rq.OverallScore - computed)
		entry := ScoreAudit{
			QuoteID:    rq.QuoteID,
			Reported:   rq.OverallScore,
			Computed:   computed,
			Delta:      delta,
			Consistent: math.Abs(delta) <= auditTolerance,
		}
		if !entry.Consistent {
			inconsistent = append(inconsistent, rq.QuoteID)
			metrics.ScoreAuditMismatches.Inc()
		}
		syn.ScoreAudit = append(syn.ScoreAudit, entry)
	}
	if len(inconsistent) > 0 {
		o.opts.logger.Warn("synthesis scores disagree with weighted formula",
			zap.String("rfq_id", rfq.ID),
			zap.Strings("quote_ids", inconsistent),
		)
		syn.ImportantNotes = append(syn.ImportantNotes, fmt.Sprintf(
			"Reported overall scores for %s differ from the weighted dimension formula by more than %.0f points; see the score audit.",
			strings.Join(inconsistent, ", "), auditTolerance))
	}
}

// compositeScore applies the weighted formula. A dimension with no score for
// the quote contributes the neutral score.
func compositeScore(quoteID string, assessments []Assessment) float64 {
	var total float64
	for _, a := range assessments {
		s, ok := a.ScoreFor(quoteID)
		if !ok {
			s = NeutralScore
		}
		if a.Dimension == DimensionRisk {
			s = 100 - s
		}
		total += s * Weights[a.Dimension]
	}
	return total
}

func fallbackSynthesis(quotes []normalize.Quote, degraded []Dimension) Synthesis {
	syn := Synthesis{
		RankedQuotes: make([]RankedQuote, 0, len(quotes)),
		ExecutiveSummary: UnavailableMessage + ". Quotes are listed in submission order with neutral scores; " +
			"use the side-by-side comparison to decide.",
		TopRecommendation: TopRecommendation{
			Confidence: "low",
			Reasoning:  "No recommendation can be made while AI analysis is unavailable.",
		},
		KeyDecisionFactors: append([]string(nil), genericDecisionFactors...),
		ImportantNotes:     []string{"This ranking was produced without AI synthesis and does not reflect quote quality."},
		Fallback:           true,
	}
	if len(degraded) > 0 {
		names := make([]string, len(degraded))
		for i, d := range degraded {
			names[i] = string(d)
		}
		syn.ImportantNotes = append(syn.ImportantNotes, "Unavailable dimensions: "+strings.Join(names, ", ")+".")
	}
	for i, q := range quotes {
		syn.RankedQuotes = append(syn.RankedQuotes, RankedQuote{
			QuoteID:      q.QuoteID,
			InsurerName:  q.DisplayName,
			OverallScore: NeutralScore,
			Rank:         i + 1,
			Label:        LabelConsider,
			Strengths:    []string{},
			Weaknesses:   []string{},
		})
	}
	return syn
}

// quoteIndex resolves the identifiers a model may use for a submitted quote:
// its id or its display name, compared case-insensitively.
type quoteIndex struct {
	byID   map[string]string
	byName map[string]string
}

func newQuoteIndex(quotes []normalize.Quote) quoteIndex {
	idx := quoteIndex{byID: make(map[string]string, len(quotes)), byName: make(map[string]string, len(quotes))}
	for _, q := range quotes {
		idx.byID[strings.ToLower(q.QuoteID)] = q.QuoteID
		if name := strings.ToLower(q.DisplayName); name != "" {
			if _, dup := idx.byName[name]; !dup {
				idx.byName[name] = q.QuoteID
			}
		}
	}
	return idx
}

func (idx quoteIndex) lookup(id, name string) (string, bool) {
	id, name = strings.ToLower(strings.TrimSpace(id)), strings.ToLower(strings.TrimSpace(name))
	if id != "" {
		if canon, ok := idx.byID[id]; ok {
			return canon, true
		}
		if canon, ok := idx.byName[id]; ok {
			return canon, true
		}
		return "", false
	}
	if name != "" {
		canon, ok := idx.byName[name]
		return canon, ok
	}
	return "", false
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
