package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/metrics"
	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/telemetry"
)

// Analyzer scores every quote along one dimension with a single completion
// call. It never returns an error: failures become a degraded assessment.
type Analyzer struct {
	dimension Dimension
	completer completion.Completer
	opts      options
}

func NewAnalyzer(d Dimension, c completion.Completer, opts ...Option) *Analyzer {
	return &Analyzer{dimension: d, completer: c, opts: buildOptions(opts)}
}

func (a *Analyzer) Dimension() Dimension { return a.dimension }

func (a *Analyzer) Analyze(ctx context.Context, quotes []normalize.Quote, rfq quote.RFQContext) Assessment {
	ctx, span := telemetry.Tracer().Start(ctx, "analysis."+string(a.dimension))
	defer span.End()
	span.SetAttributes(
		attribute.String("dimension", string(a.dimension)),
		attribute.String("rfq_id", rfq.ID),
		attribute.Int("quote_count", len(quotes)),
	)

	start := a.opts.now()
	out, err := a.assess(ctx, quotes, rfq)
	if err != nil {
		a.opts.logger.Warn("analyzer degraded to neutral scores",
			zap.String("dimension", string(a.dimension)),
			zap.String("rfq_id", rfq.ID),
			zap.Int("quote_count", len(quotes)),
			zap.Error(err),
		)
		metrics.RecordCompletionFailure(string(a.dimension), failureClass(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "degraded")
		out = fallbackAssessment(a.dimension, quotes, err)
	}
	metrics.RecordAnalyzerCall(string(a.dimension), a.opts.now().Sub(start), out.Degraded)
	return out
}

type assessmentReply struct {
	Quotes  []map[string]any `json:"quotes"`
	Summary any              `json:"summary"`
}

func (a *Analyzer) assess(ctx context.Context, quotes []normalize.Quote, rfq quote.RFQContext) (Assessment, error) {
	if a.completer == nil {
		return Assessment{}, errors.New("no completion backend configured")
	}
	reply, err := a.completer.Complete(ctx, a.opts.request(analyzerPrompt(a.dimension, quotes, rfq)))
	if err != nil {
		return Assessment{}, fmt.Errorf("%s completion: %w", a.dimension, err)
	}
	var parsed assessmentReply
	if err := decodeReply(string(a.dimension), reply, assessmentReplySchema, &parsed); err != nil {
		return Assessment{}, err
	}

	byKey := make(map[string]QuoteAssessment, len(parsed.Quotes))
	for _, item := range parsed.Quotes {
		qa := a.quoteAssessment(item)
		if qa.QuoteID == "" {
			continue
		}
		byKey[strings.ToLower(qa.QuoteID)] = qa
	}

	out := Assessment{
		Dimension: a.dimension,
		Quotes:    make([]QuoteAssessment, 0, len(quotes)),
		Summary:   stringOf(parsed.Summary),
	}
	matched := 0
	for _, q := range quotes {
		qa, ok := byKey[strings.ToLower(q.QuoteID)]
		if !ok {
			qa, ok = byKey[strings.ToLower(q.DisplayName)]
		}
		if !ok {
			out.Quotes = append(out.Quotes, neutralQuote(q.QuoteID, "quote was not assessed in the reply"))
			continue
		}
		matched++
		qa.QuoteID = q.QuoteID
		out.Quotes = append(out.Quotes, qa)
	}
	if len(quotes) > 0 && matched == 0 {
		return Assessment{}, &ReplyError{Dimension: string(a.dimension), Reason: "reply assessed none of the submitted quotes"}
	}
	return out, nil
}

var (
	idKeys       = []string{"quote_id", "quoteId", "id"}
	labelKeys    = []string{"label", "rating", "assessment"}
	strengthKeys = []string{"strengths", "pros"}
	concernKeys  = []string{"concerns", "weaknesses", "gaps", "cons", "risks"}
)

func (a *Analyzer) scoreKeys() []string {
	d := string(a.dimension)
	return []string{"score", d + "_score", d + "Score", "dimension_score"}
}

// quoteAssessment reads one reply entry. Unrecognised keys are kept as
// findings.
func (a *Analyzer) quoteAssessment(item map[string]any) QuoteAssessment {
	qa := QuoteAssessment{Findings: map[string]any{}}
	used := map[string]bool{}

	if v, k, ok := firstPresent(item, idKeys...); ok {
		qa.QuoteID, used[k] = stringOf(v), true
	}
	if v, k, ok := firstPresent(item, a.scoreKeys()...); ok {
		used[k] = true
		if n, ok := normalize.ParseNumber(v); ok {
			qa.Score = clampScore(n)
		} else {
			qa.Score = NeutralScore
			qa.Findings["score_error"] = fmt.Sprintf("unreadable score %q", stringOf(v))
		}
	} else {
		qa.Score = NeutralScore
		qa.Findings["score_error"] = "score missing from reply"
	}
	if v, k, ok := firstPresent(item, labelKeys...); ok {
		qa.Label, used[k] = stringOf(v), true
	}
	qa.Strengths, qa.Concerns = []string{}, []string{}
	if v, k, ok := firstPresent(item, strengthKeys...); ok {
		qa.Strengths, used[k] = stringList(v), true
	}
	if v, k, ok := firstPresent(item, concernKeys...); ok {
		qa.Concerns, used[k] = stringList(v), true
	}

	if v, ok := item["findings"]; ok {
		used["findings"] = true
		switch f := v.(type) {
		case map[string]any:
			for k, fv := range f {
				qa.Findings[k] = fv
			}
		case []any:
			qa.Findings["items"] = stringList(f)
		default:
			if s := stringOf(f); s != "" {
				qa.Findings["note"] = s
			}
		}
	}
	for k, v := range item {
		if !used[k] {
			qa.Findings[k] = v
		}
	}
	if len(qa.Findings) == 0 {
		qa.Findings = nil
	}
	return qa
}

func neutralQuote(quoteID, reason string) QuoteAssessment {
	return QuoteAssessment{
		QuoteID:   quoteID,
		Score:     NeutralScore,
		Label:     LabelUnavailable,
		Strengths: []string{},
		Concerns:  []string{},
		Findings:  map[string]any{"error": reason},
	}
}

func fallbackAssessment(d Dimension, quotes []normalize.Quote, err error) Assessment {
	reason := "analysis failed"
	if err != nil {
		reason = err.Error()
	}
	out := Assessment{
		Dimension: d,
		Quotes:    make([]QuoteAssessment, 0, len(quotes)),
		Summary:   fmt.Sprintf("%s analysis is temporarily unavailable; neutral scores were assigned.", dimensionTitle(d)),
		Degraded:  true,
		Error:     reason,
	}
	for _, q := range quotes {
		out.Quotes = append(out.Quotes, neutralQuote(q.QuoteID, reason))
	}
	return out
}

func dimensionTitle(d Dimension) string {
	s := string(d)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
