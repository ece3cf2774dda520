package analysis

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/metrics"
	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/telemetry"
)

// Orchestrator runs the five analyzers concurrently, waits for all of them
// and then merges their assessments in a single synthesis call.
type Orchestrator struct {
	analyzers []*Analyzer
	completer completion.Completer
	opts      options
}

func NewOrchestrator(c completion.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{completer: c, opts: buildOptions(opts)}
	for _, d := range Dimensions {
		o.analyzers = append(o.analyzers, NewAnalyzer(d, c, opts...))
	}
	return o
}

// Orchestrate always returns a structurally complete result. Analyzer and
// synthesis failures surface only as degraded markers.
func (o *Orchestrator) Orchestrate(ctx context.Context, quotes []normalize.Quote, rfq quote.RFQContext, productName string) Result {
	if productName != "" {
		rfq.ProductName = productName
	}
	ctx, span := telemetry.Tracer().Start(ctx, "analysis.orchestrate")
	defer span.End()
	span.SetAttributes(attribute.String("rfq_id", rfq.ID), attribute.Int("quote_count", len(quotes)))

	res := Result{
		RunID:       o.opts.newID(),
		RFQID:       rfq.ID,
		ProductName: rfq.ProductName,
		StartedAt:   o.opts.now().UTC(),
	}

	assessments := make([]Assessment, len(o.analyzers))
	var g errgroup.Group
	for i, a := range o.analyzers {
		own := copyQuotes(quotes)
		g.Go(func() error {
			assessments[i] = a.Analyze(ctx, own, rfq)
			return nil
		})
	}
	_ = g.Wait()

	res.DegradedDimensions = []Dimension{}
	for _, a := range assessments {
		res.setAssessment(a)
		if a.Degraded {
			res.DegradedDimensions = append(res.DegradedDimensions, a.Dimension)
		}
	}

	syn, err := o.synthesize(ctx, assessments, quotes, rfq)
	if err != nil {
		o.opts.logger.Warn("synthesis degraded to fallback ranking",
			zap.String("rfq_id", rfq.ID),
			zap.Int("quote_count", len(quotes)),
			zap.Error(err),
		)
		metrics.RecordCompletionFailure("synthesis", failureClass(err))
		span.RecordError(err)
		syn = fallbackSynthesis(quotes, res.DegradedDimensions)
	}
	metrics.RecordSynthesis(syn.Fallback)

	res.OrchestratorSynthesis = syn
	res.SynthesisFallback = syn.Fallback
	res.CompletedAt = o.opts.now().UTC()
	o.opts.logger.Info("analysis complete",
		zap.String("run_id", res.RunID),
		zap.String("rfq_id", rfq.ID),
		zap.Int("quote_count", len(quotes)),
		zap.Int("degraded_dimensions", len(res.DegradedDimensions)),
		zap.Bool("synthesis_fallback", res.SynthesisFallback),
		zap.Duration("elapsed", res.CompletedAt.Sub(res.StartedAt)),
	)
	return res
}

// copyQuotes gives each analyzer its own read-only view of the quote set.
func copyQuotes(in []normalize.Quote) []normalize.Quote {
	out := make([]normalize.Quote, len(in))
	for i, q := range in {
		fields := make(map[string]normalize.Field, len(q.Fields))
		for k, v := range q.Fields {
			fields[k] = v
		}
		q.Fields = fields
		out[i] = q
	}
	return out
}
