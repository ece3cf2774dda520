// Package quotecompare exposes the two entry points of the quote comparison
// system: the deterministic side-by-side comparison and the AI analysis run.
package quotecompare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/joelkehle/quote-compare/internal/analysis"
	"github.com/joelkehle/quote-compare/internal/compare"
	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/logging"
	"github.com/joelkehle/quote-compare/internal/metrics"
	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/schema"
	"github.com/joelkehle/quote-compare/internal/store"
	"github.com/joelkehle/quote-compare/internal/telemetry"
)

// ErrNoQuotes is the contract violation both entry points reject.
var ErrNoQuotes = compare.ErrNoQuotes

// ErrDuplicateQuoteID rejects an analysis whose quotes share an id. Model
// replies are matched to quotes by id without regard to case, so ids that
// differ only in case count as duplicates.
var ErrDuplicateQuoteID = errors.New("quote ids must be unique")

type Config struct {
	Registry     *schema.Registry
	Formatter    *normalize.Formatter
	Completer    completion.Completer
	Store        store.Store
	Logger       *zap.Logger
	AnalysisOpts []analysis.Option
}

type Service struct {
	registry     *schema.Registry
	normalizer   *normalize.Normalizer
	engine       *compare.Engine
	orchestrator *analysis.Orchestrator
	store        store.Store
	logger       *zap.Logger
}

func New(cfg Config) *Service {
	reg := cfg.Registry
	if reg == nil {
		reg = schema.Default()
	}
	formatter := cfg.Formatter
	if formatter == nil {
		formatter = normalize.DefaultFormatter()
	}
	logger := logging.OrNop(cfg.Logger)
	normalizer := normalize.NewNormalizer(normalize.NewResolver(reg), formatter)
	opts := append([]analysis.Option{analysis.WithLogger(logger.Named("analysis"))}, cfg.AnalysisOpts...)
	return &Service{
		registry:     reg,
		normalizer:   normalizer,
		engine:       compare.NewEngine(reg, normalizer),
		orchestrator: analysis.NewOrchestrator(cfg.Completer, opts...),
		store:        cfg.Store,
		logger:       logger,
	}
}

func (s *Service) Registry() *schema.Registry { return s.registry }

// CompareQuotes is synchronous and deterministic.
func (s *Service) CompareQuotes(ctx context.Context, productName string, quotes []quote.Quote) (compare.Result, error) {
	_, span := telemetry.Tracer().Start(ctx, "quotecompare.compare")
	defer span.End()
	span.SetAttributes(attribute.String("product", productName), attribute.Int("quote_count", len(quotes)))

	res, err := s.engine.Compare(productName, withQuoteIDs(quotes))
	if err != nil {
		return compare.Result{}, err
	}
	metrics.RecordComparison(res.SchemaRegistered)
	s.logger.Debug("comparison built",
		zap.String("product", productName),
		zap.Bool("schema_registered", res.SchemaRegistered),
		zap.Int("quote_count", len(quotes)),
		zap.Int("insights", len(res.Insights)),
	)
	return res, nil
}

// OrchestrateAnalysis runs the five analyzers and the synthesis. Degradation
// is reported inside the result; only contract violations return an error.
// When a store is configured and the RFQ has an id, the result is saved,
// replacing any earlier one.
func (s *Service) OrchestrateAnalysis(ctx context.Context, quotes []quote.Quote, rfq quote.RFQContext, productName string) (analysis.Result, error) {
	if len(quotes) == 0 {
		return analysis.Result{}, ErrNoQuotes
	}
	quotes = withQuoteIDs(quotes)
	if err := uniqueQuoteIDs(quotes); err != nil {
		return analysis.Result{}, err
	}
	if productName == "" {
		productName = rfq.ProductName
	}
	sch, _ := s.registry.SchemaOrBasic(productName)
	normalized := s.normalizer.Normalize(quotes, sch)
	res := s.orchestrator.Orchestrate(ctx, normalized, rfq, productName)

	if s.store != nil && rfq.ID != "" {
		if err := s.store.SaveAnalysis(ctx, res); err != nil {
			s.logger.Warn("persist analysis failed", zap.String("rfq_id", rfq.ID), zap.Error(err))
		}
	}
	return res, nil
}

// LatestAnalysis returns the most recently saved analysis for an RFQ.
func (s *Service) LatestAnalysis(ctx context.Context, rfqID string) (analysis.Result, error) {
	if s.store == nil {
		return analysis.Result{}, store.ErrNotFound
	}
	res, err := s.store.LatestAnalysis(ctx, rfqID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return analysis.Result{}, fmt.Errorf("latest analysis: %w", err)
	}
	return res, err
}

// Products lists the product names with a registered field schema.
func (s *Service) Products() []string { return s.registry.Products() }

// withQuoteIDs returns a copy of quotes in which every quote has an id.
// A missing id becomes "quote-<position>", skipping ids already taken.
func withQuoteIDs(quotes []quote.Quote) []quote.Quote {
	out := make([]quote.Quote, len(quotes))
	copy(out, quotes)
	taken := make(map[string]bool, len(out))
	for i := range out {
		out[i].ID = strings.TrimSpace(out[i].ID)
		if out[i].ID != "" {
			taken[strings.ToLower(out[i].ID)] = true
		}
	}
	for i := range out {
		if out[i].ID != "" {
			continue
		}
		id := fmt.Sprintf("quote-%d", i+1)
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("quote-%d-%d", i+1, n)
		}
		taken[id] = true
		out[i].ID = id
	}
	return out
}

func uniqueQuoteIDs(quotes []quote.Quote) error {
	seen := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		key := strings.ToLower(q.ID)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateQuoteID, q.ID)
		}
		seen[key] = true
	}
	return nil
}
