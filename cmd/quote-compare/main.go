package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/joelkehle/quote-compare/internal/analysis"
	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/config"
	"github.com/joelkehle/quote-compare/internal/logging"
	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/quotecompare"
)

// bidSet is the input file: the RFQ plus the quotes received against it.
type bidSet struct {
	ProductName string           `json:"product_name"`
	RFQ         quote.RFQContext `json:"rfq"`
	Quotes      []quote.Quote    `json:"quotes"`
}

func main() {
	inputPath := flag.String("input", "", "Path to bid set JSON ({product_name, rfq, quotes})")
	outputPath := flag.String("out", "", "Path to write output (defaults to stdout)")
	format := flag.String("format", "markdown", "Output format: json, markdown, html or pdf")
	analyze := flag.Bool("analyze", false, "Run the AI analysis in addition to the comparison")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}
	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var bids bidSet
	if err := json.Unmarshal(in, &bids); err != nil {
		log.Fatalf("decode input JSON: %v", err)
	}
	if bids.ProductName == "" {
		bids.ProductName = bids.RFQ.ProductName
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	registry, err := cfg.Registry()
	if err != nil {
		log.Fatalf("load schemas: %v", err)
	}

	svcCfg := quotecompare.Config{Registry: registry, Logger: logger}
	if *analyze {
		svcCfg.Completer, err = completion.New(cfg.CompletionOptions())
		if err != nil {
			log.Fatalf("completion backend: %v", err)
		}
	}
	svc := quotecompare.New(svcCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmp, err := svc.CompareQuotes(ctx, bids.ProductName, bids.Quotes)
	if err != nil {
		log.Fatalf("compare quotes: %v", err)
	}
	var an *analysis.Result
	if *analyze {
		res, err := svc.OrchestrateAnalysis(ctx, bids.Quotes, bids.RFQ, bids.ProductName)
		if err != nil {
			log.Fatalf("analyze quotes: %v", err)
		}
		an = &res
	}

	out, err := render(ctx, strings.ToLower(*format), bids.ProductName, cmp, an)
	if err != nil {
		log.Fatalf("render %s: %v", *format, err)
	}
	if err := writeOutput(*outputPath, out); err != nil {
		log.Fatalf("write output: %v", err)
	}
}
