package compare

import (
	"github.com/joelkehle/quote-compare/internal/normalize"
	"github.com/joelkehle/quote-compare/internal/schema"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type InsightType string

const (
	InsightBasicComparison InsightType = "basic_comparison"
	InsightPremiumSpread   InsightType = "premium_spread"
	InsightMissingCritical InsightType = "missing_critical_field"
	InsightValueSpread     InsightType = "value_spread"
)

type Insight struct {
	Type     InsightType `json:"type"`
	Severity Severity    `json:"severity"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Field    string      `json:"field,omitempty"`
}

// Row is one schema field across all quotes. BestIndex is set only for
// fields with a known favourable direction.
type Row struct {
	Field     string           `json:"field"`
	Label     string           `json:"label"`
	Type      schema.FieldType `json:"type"`
	Critical  bool             `json:"critical"`
	Values    []string         `json:"values"`
	Raw       []any            `json:"raw"`
	BestIndex *int             `json:"best_index"`
}

type Matrix struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// QuoteMetrics holds the value-efficiency figures for one quote. Efficiency,
// ratio and score are nil when premium or coverage is missing or coverage is
// not positive.
type QuoteMetrics struct {
	QuoteID           string   `json:"quote_id"`
	DisplayName       string   `json:"display_name"`
	Premium           *float64 `json:"premium"`
	Coverage          *float64 `json:"coverage"`
	PremiumEfficiency *float64 `json:"premium_efficiency"`
	CoverageRatio     *float64 `json:"coverage_ratio"`
	ValueScore        *float64 `json:"value_score"`
	ResolvedFields    int      `json:"resolved_fields"`
	MissingFields     int      `json:"missing_fields"`
	Completeness      float64  `json:"completeness_pct"`
}

// Pick is a best-in-category selection.
type Pick struct {
	QuoteID     string  `json:"quote_id"`
	DisplayName string  `json:"display_name"`
	Index       int     `json:"index"`
	Value       float64 `json:"value"`
}

// BestQuotes leaves a category nil when no quote is eligible for it.
type BestQuotes struct {
	LowestPremium   *Pick `json:"lowest_premium"`
	HighestCoverage *Pick `json:"highest_coverage"`
	BestValue       *Pick `json:"best_value"`
	MostComplete    *Pick `json:"most_complete"`
}

type Result struct {
	ProductName      string            `json:"product_name"`
	SchemaRegistered bool              `json:"schema_registered"`
	Matrix           Matrix            `json:"matrix"`
	NormalizedQuotes []normalize.Quote `json:"normalized_quotes"`
	Metrics          []QuoteMetrics    `json:"metrics"`
	BestQuotes       BestQuotes        `json:"best_quotes"`
	Insights         []Insight         `json:"insights"`
}
