package analysis

import (
	"fmt"
	"time"
)

type Dimension string

const (
	DimensionCoverage   Dimension = "coverage"
	DimensionPricing    Dimension = "pricing"
	DimensionTerms      Dimension = "terms"
	DimensionCompliance Dimension = "compliance"
	DimensionRisk       Dimension = "risk"
)

// Dimensions lists every analyzer in dispatch order.
var Dimensions = []Dimension{DimensionCoverage, DimensionPricing, DimensionTerms, DimensionCompliance, DimensionRisk}

// Weights of the composite score. Risk is inverted before weighting.
var Weights = map[Dimension]float64{
	DimensionCoverage:   0.30,
	DimensionPricing:    0.25,
	DimensionTerms:      0.20,
	DimensionCompliance: 0.15,
	DimensionRisk:       0.10,
}

const (
	NeutralScore       = 50.0
	LabelUnavailable   = "Unable to analyze"
	UnavailableMessage = "AI analysis is temporarily unavailable"
)

const (
	LabelHighlyRecommended = "Highly Recommended"
	LabelRecommended       = "Recommended"
	LabelConsider          = "Consider"
	LabelNotRecommended    = "Not Recommended"
)

// RecommendationLabel maps an overall score onto the label thresholds.
func RecommendationLabel(score float64) string {
	switch {
	case score >= 90:
		return LabelHighlyRecommended
	case score >= 75:
		return LabelRecommended
	case score >= 60:
		return LabelConsider
	default:
		return LabelNotRecommended
	}
}

type QuoteAssessment struct {
	QuoteID   string         `json:"quote_id"`
	Score     float64        `json:"score"`
	Label     string         `json:"label"`
	Strengths []string       `json:"strengths"`
	Concerns  []string       `json:"concerns"`
	Findings  map[string]any `json:"findings,omitempty"`
}

// Assessment is one analyzer's output. Degraded assessments carry the
// neutral score and LabelUnavailable for every quote.
type Assessment struct {
	Dimension Dimension         `json:"dimension"`
	Quotes    []QuoteAssessment `json:"quotes"`
	Summary   string            `json:"summary"`
	Degraded  bool              `json:"degraded"`
	Error     string            `json:"error,omitempty"`
}

func (a Assessment) ScoreFor(quoteID string) (float64, bool) {
	for _, q := range a.Quotes {
		if q.QuoteID == quoteID {
			return q.Score, true
		}
	}
	return 0, false
}

type RankedQuote struct {
	QuoteID      string   `json:"quote_id"`
	InsurerName  string   `json:"insurer_name,omitempty"`
	OverallScore float64  `json:"overall_score"`
	Rank         int      `json:"rank"`
	Label        string   `json:"label"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	BestFor      string   `json:"best_for"`
}

type TopRecommendation struct {
	QuoteID    string `json:"quote_id"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// ScoreAudit compares the overall score the synthesis reported with the
// weighted formula recomputed from the dimension assessments.
type ScoreAudit struct {
	QuoteID    string  `json:"quote_id"`
	Reported   float64 `json:"reported"`
	Computed   float64 `json:"computed"`
	Delta      float64 `json:"delta"`
	Consistent bool    `json:"consistent"`
}

type Synthesis struct {
	RankedQuotes       []RankedQuote     `json:"ranked_quotes"`
	ExecutiveSummary   string            `json:"executive_summary"`
	TopRecommendation  TopRecommendation `json:"top_recommendation"`
	KeyDecisionFactors []string          `json:"key_decision_factors"`
	ImportantNotes     []string          `json:"important_notes"`
	ScoreAudit         []ScoreAudit      `json:"score_audit,omitempty"`
	Fallback           bool              `json:"fallback"`
}

// Result is the outcome of one orchestration run. The JSON keys of the five
// assessments and the synthesis are part of the public contract.
type Result struct {
	RunID                 string      `json:"run_id"`
	RFQID                 string      `json:"rfq_id,omitempty"`
	ProductName           string      `json:"product_name"`
	CoverageAnalysis      Assessment  `json:"coverageAnalysis"`
	PricingAnalysis       Assessment  `json:"pricingAnalysis"`
	TermsAnalysis         Assessment  `json:"termsAnalysis"`
	ComplianceAnalysis    Assessment  `json:"complianceAnalysis"`
	RiskAnalysis          Assessment  `json:"riskAnalysis"`
	OrchestratorSynthesis Synthesis   `json:"orchestratorSynthesis"`
	DegradedDimensions    []Dimension `json:"degraded_dimensions"`
	SynthesisFallback     bool        `json:"synthesis_fallback"`
	StartedAt             time.Time   `json:"started_at"`
	CompletedAt           time.Time   `json:"completed_at"`
}

func (r *Result) Assessment(d Dimension) Assessment {
	switch d {
	case DimensionCoverage:
		return r.CoverageAnalysis
	case DimensionPricing:
		return r.PricingAnalysis
	case DimensionTerms:
		return r.TermsAnalysis
	case DimensionCompliance:
		return r.ComplianceAnalysis
	case DimensionRisk:
		return r.RiskAnalysis
	}
	return Assessment{}
}

func (r *Result) setAssessment(a Assessment) {
	switch a.Dimension {
	case DimensionCoverage:
		r.CoverageAnalysis = a
	case DimensionPricing:
		r.PricingAnalysis = a
	case DimensionTerms:
		r.TermsAnalysis = a
	case DimensionCompliance:
		r.ComplianceAnalysis = a
	case DimensionRisk:
		r.RiskAnalysis = a
	}
}

// ReplyError describes why a completion reply could not be used.
type ReplyError struct {
	Dimension string
	Reason    string
	Err       error
}

func (e *ReplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Dimension, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Dimension, e.Reason)
}

func (e *ReplyError) Unwrap() error { return e.Err }
