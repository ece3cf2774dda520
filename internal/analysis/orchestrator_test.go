package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/quote"
)

// fakeCompleter answers by the first sentence of the prompt, e.g.
// "Pricing Analysis" or "Synthesis". Unknown prompts get an empty reply.
type fakeCompleter struct {
	mu      sync.Mutex
	replies map[string]completion.Reply
	errs    map[string]error
	prompts map[string]string
}

func newFake() *fakeCompleter {
	return &fakeCompleter{
		replies: map[string]completion.Reply{},
		errs:    map[string]error{},
		prompts: map[string]string{},
	}
}

func (f *fakeCompleter) text(key, body string) *fakeCompleter {
	f.replies[key] = completion.TextReply(body)
	return f
}

func (f *fakeCompleter) Complete(_ context.Context, req completion.Request) (completion.Reply, error) {
	prompt := req.Messages[len(req.Messages)-1].Content
	key := strings.SplitN(prompt, ".", 2)[0]
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts[key] = prompt
	if err := f.errs[key]; err != nil {
		return completion.Reply{}, err
	}
	if r, ok := f.replies[key]; ok {
		return r, nil
	}
	return completion.TextReply(""), nil
}

func testQuotes() []normalize.Quote {
	return []normalize.Quote{
		{QuoteID: "q1", DisplayName: "Alpha General", Fields: map[string]normalize.Field{
			"premium": {Value: 100000.0, Display: "₹1,00,000"},
		}},
		{QuoteID: "q2", DisplayName: "Beta Assurance", Fields: map[string]normalize.Field{
			"premium": {Value: 150000.0, Display: "₹1,50,000"},
		}},
	}
}

var testRFQ = quote.RFQContext{ID: "rfq-7", CompanyName: "Acme Textiles", Industry: "Manufacturing", EmployeeCount: 420}

func assessmentJSON(s1, s2 float64) string {
	return fmt.Sprintf(`{"quotes":[
		{"quote_id":"q1","score":%v,"label":"Good","strengths":["broad"],"concerns":[]},
		{"quote_id":"q2","score":%v,"label":"Fair","strengths":[],"concerns":["narrow"]}
	],"summary":"ok"}`, s1, s2)
}

func allAnalyzers(f *fakeCompleter) *fakeCompleter {
	return f.
		text("Coverage Analysis", assessmentJSON(80, 60)).
		text("Pricing Analysis", assessmentJSON(70, 90)).
		text("Terms Analysis", assessmentJSON(60, 70)).
		text("Compliance Analysis", assessmentJSON(90, 80)).
		text("Risk Analysis", assessmentJSON(20, 40))
}

const consistentSynthesis = `{
  "ranked_quotes": [
    {"quote_id":"q1","insurer_name":"Alpha General","overall_score":75,"rank":1,"label":"Recommended","strengths":["cover"],"weaknesses":[],"best_for":"broad cover"},
    {"quote_id":"q2","insurer_name":"Beta Assurance","overall_score":72.5,"rank":2,"label":"Consider","strengths":["price"],"weaknesses":["gaps"],"best_for":"tight budgets"}
  ],
  "executive_summary":"Alpha leads on cover.",
  "top_recommendation":{"quote_id":"q1","confidence":"medium","reasoning":"best cover"},
  "key_decision_factors":["cover breadth"],
  "important_notes":[]
}`

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func newTestOrchestrator(f *fakeCompleter) *Orchestrator {
	return NewOrchestrator(f, withClock(fixedClock()), withIDs(func() string { return "run-1" }))
}

func TestOrchestrateHappyPath(t *testing.T) {
	f := allAnalyzers(newFake()).text("Synthesis", "```json\n"+consistentSynthesis+"\n```")
	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "Group Health Insurance")

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "rfq-7", res.RFQID)
	assert.Equal(t, "Group Health Insurance", res.ProductName)
	assert.Empty(t, res.DegradedDimensions)
	assert.False(t, res.SynthesisFallback)
	for _, d := range Dimensions {
		a := res.Assessment(d)
		assert.Equal(t, d, a.Dimension)
		assert.False(t, a.Degraded)
		assert.Len(t, a.Quotes, 2)
	}

	syn := res.OrchestratorSynthesis
	require.Len(t, syn.RankedQuotes, 2)
	assert.Equal(t, "q1", syn.RankedQuotes[0].QuoteID)
	require.Len(t, syn.ScoreAudit, 2)
	assert.Equal(t, 75.0, syn.ScoreAudit[0].Computed)
	assert.Equal(t, 72.5, syn.ScoreAudit[1].Computed)
	assert.True(t, syn.ScoreAudit[0].Consistent)
	assert.True(t, syn.ScoreAudit[1].Consistent)
	assert.Empty(t, syn.ImportantNotes)

	assert.Contains(t, f.prompts["Synthesis"], "(100 - risk)*0.10")
	assert.Contains(t, f.prompts["Coverage Analysis"], "Acme Textiles")
	assert.Contains(t, f.prompts["Pricing Analysis"], "Quote q2 (Beta Assurance)")
}

func TestAnalyzerFaultIsolation(t *testing.T) {
	f := allAnalyzers(newFake()).text("Synthesis", consistentSynthesis)
	f.errs["Pricing Analysis"] = errors.New("status code: 503 service unavailable")
	f.text("Terms Analysis", "I could not produce JSON today")
	f.text("Compliance Analysis", `[1,2,3]`)
	f.text("Risk Analysis", `{"summary":"no quotes key"}`)

	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "Group Health Insurance")

	assert.ElementsMatch(t,
		[]Dimension{DimensionPricing, DimensionTerms, DimensionCompliance, DimensionRisk},
		res.DegradedDimensions)
	assert.False(t, res.CoverageAnalysis.Degraded)
	for _, d := range []Dimension{DimensionPricing, DimensionTerms, DimensionCompliance, DimensionRisk} {
		a := res.Assessment(d)
		assert.True(t, a.Degraded, d)
		assert.NotEmpty(t, a.Error)
		assert.Contains(t, a.Summary, "temporarily unavailable")
		require.Len(t, a.Quotes, 2)
		for _, q := range a.Quotes {
			assert.Equal(t, NeutralScore, q.Score)
			assert.Equal(t, LabelUnavailable, q.Label)
			assert.NotEmpty(t, q.Findings["error"])
		}
	}
	assert.NotEmpty(t, res.OrchestratorSynthesis.RankedQuotes)
	assert.Contains(t, f.prompts["Synthesis"], "PRICING (unavailable, neutral scores)")
}

func TestSynthesisFailureFallsBack(t *testing.T) {
	f := allAnalyzers(newFake())
	f.errs["Synthesis"] = context.DeadlineExceeded

	quotes := testQuotes()
	res := newTestOrchestrator(f).Orchestrate(context.Background(), quotes, testRFQ, "Group Health Insurance")

	syn := res.OrchestratorSynthesis
	assert.True(t, res.SynthesisFallback)
	assert.True(t, syn.Fallback)
	assert.Contains(t, syn.ExecutiveSummary, "temporarily unavailable")
	require.Len(t, syn.RankedQuotes, len(quotes))
	for i, rq := range syn.RankedQuotes {
		assert.Equal(t, quotes[i].QuoteID, rq.QuoteID, "input order")
		assert.Equal(t, 50.0, rq.OverallScore)
		assert.Equal(t, i+1, rq.Rank)
		assert.Equal(t, LabelConsider, rq.Label)
	}
	assert.Equal(t, genericDecisionFactors, syn.KeyDecisionFactors)
	assert.Empty(t, syn.ScoreAudit)
}

func TestSynthesisMalformedReplyFallsBack(t *testing.T) {
	f := allAnalyzers(newFake()).text("Synthesis", `{"ranked_quotes":[{"quote_id":"q1","overall_score":"high"}]}`)
	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "")
	assert.True(t, res.SynthesisFallback)
}

func TestEveryCallFailingStillYieldsCompleteResult(t *testing.T) {
	res := newTestOrchestrator(newFake()).Orchestrate(context.Background(), testQuotes(), testRFQ, "Unknown Product")
	assert.Len(t, res.DegradedDimensions, len(Dimensions))
	assert.True(t, res.SynthesisFallback)
	assert.Len(t, res.OrchestratorSynthesis.RankedQuotes, 2)
	assert.Contains(t, strings.Join(res.OrchestratorSynthesis.ImportantNotes, " "), "coverage, pricing, terms, compliance, risk")
}

func TestScoreAuditFlagsInconsistentScores(t *testing.T) {
	inflated := strings.Replace(consistentSynthesis, `"overall_score":75,`, `"overall_score":95,`, 1)
	f := allAnalyzers(newFake()).text("Synthesis", inflated)
	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "Group Health Insurance")

	syn := res.OrchestratorSynthesis
	require.False(t, syn.Fallback)
	assert.Equal(t, 95.0, syn.RankedQuotes[0].OverallScore, "model output is not overridden")
	assert.False(t, syn.ScoreAudit[0].Consistent)
	assert.Equal(t, 20.0, syn.ScoreAudit[0].Delta)
	assert.True(t, syn.ScoreAudit[1].Consistent)
	require.Len(t, syn.ImportantNotes, 1)
	assert.Contains(t, syn.ImportantNotes[0], "q1")
}

func TestSynthesisAppendsUnrankedQuotes(t *testing.T) {
	partial := `{"ranked_quotes":[{"quote_id":"Q2","overall_score":72.5}],"executive_summary":"x"}`
	f := allAnalyzers(newFake()).text("Synthesis", partial)
	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "Group Health Insurance")

	ranked := res.OrchestratorSynthesis.RankedQuotes
	require.Len(t, ranked, 2)
	assert.Equal(t, "q2", ranked[0].QuoteID, "ids are matched case-insensitively")
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, LabelConsider, ranked[0].Label, "label derived from score")
	assert.Equal(t, "q1", ranked[1].QuoteID)
	assert.Equal(t, 75.0, ranked[1].OverallScore)
	assert.Equal(t, LabelRecommended, ranked[1].Label)
}

func TestSynthesisDropsQuotesThatWereNotSubmitted(t *testing.T) {
	reply := `{
	  "ranked_quotes": [
	    {"quote_id":"q1","overall_score":75,"rank":1},
	    {"quote_id":"ghost","overall_score":99,"rank":2},
	    {"quote_id":"q2","overall_score":72.5,"rank":3}
	  ],
	  "executive_summary":"x",
	  "top_recommendation":{"quote_id":"ghost","confidence":"high","reasoning":"made up"}
	}`
	f := allAnalyzers(newFake()).text("Synthesis", reply)
	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "Group Health Insurance")

	syn := res.OrchestratorSynthesis
	require.False(t, syn.Fallback)
	require.Len(t, syn.RankedQuotes, 2)
	assert.Equal(t, "q1", syn.RankedQuotes[0].QuoteID)
	assert.Equal(t, 1, syn.RankedQuotes[0].Rank)
	assert.Equal(t, "q2", syn.RankedQuotes[1].QuoteID)
	assert.Equal(t, 2, syn.RankedQuotes[1].Rank, "ranks are renumbered")
	assert.Equal(t, "q1", syn.TopRecommendation.QuoteID, "unknown top pick follows the ranking")
	assert.Len(t, syn.ScoreAudit, 2)
}

func TestSynthesisMatchesQuotesByDisplayName(t *testing.T) {
	reply := `{
	  "ranked_quotes": [
	    {"quote_id":"Beta Assurance","overall_score":72.5,"rank":2},
	    {"quote_id":"","insurer_name":"alpha general","overall_score":75,"rank":1}
	  ],
	  "top_recommendation":{"quote_id":"ALPHA GENERAL","confidence":"medium","reasoning":"cover"}
	}`
	f := allAnalyzers(newFake()).text("Synthesis", reply)
	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "Group Health Insurance")

	syn := res.OrchestratorSynthesis
	require.False(t, syn.Fallback)
	require.Len(t, syn.RankedQuotes, 2)
	assert.Equal(t, "q1", syn.RankedQuotes[0].QuoteID, "ordered by the reply's ranks")
	assert.Equal(t, "q2", syn.RankedQuotes[1].QuoteID)
	assert.Equal(t, "q1", syn.TopRecommendation.QuoteID)
	assert.Empty(t, syn.ImportantNotes)
}

func TestSynthesisRankingOnlyUnknownQuotesFallsBack(t *testing.T) {
	f := allAnalyzers(newFake()).text("Synthesis", `{"ranked_quotes":[{"quote_id":"ghost","overall_score":99}]}`)
	res := newTestOrchestrator(f).Orchestrate(context.Background(), testQuotes(), testRFQ, "Group Health Insurance")
	assert.True(t, res.SynthesisFallback)
}

func TestCompositeScoreInvertsRisk(t *testing.T) {
	var as []Assessment
	for _, d := range Dimensions {
		as = append(as, Assessment{Dimension: d, Quotes: []QuoteAssessment{{QuoteID: "a", Score: 100}}})
	}
	assert.InDelta(t, 90.0, compositeScore("a", as), 1e-9)
	assert.InDelta(t, 50.0, compositeScore("missing", as), 1e-9)
}

func TestRecommendationLabel(t *testing.T) {
	assert.Equal(t, LabelHighlyRecommended, RecommendationLabel(90))
	assert.Equal(t, LabelRecommended, RecommendationLabel(89.99))
	assert.Equal(t, LabelRecommended, RecommendationLabel(75))
	assert.Equal(t, LabelConsider, RecommendationLabel(60))
	assert.Equal(t, LabelNotRecommended, RecommendationLabel(59.9))
}

func TestCopyQuotesIsolatesFieldMaps(t *testing.T) {
	in := testQuotes()
	out := copyQuotes(in)
	out[0].Fields["premium"] = normalize.Field{Display: "changed"}
	assert.Equal(t, "₹1,00,000", in[0].Fields["premium"].Display)
}
