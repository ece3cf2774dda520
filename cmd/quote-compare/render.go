package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joelkehle/quote-compare/internal/analysis"
	"github.com/joelkehle/quote-compare/internal/compare"
	"github.com/joelkehle/quote-compare/internal/report"
)

type output struct {
	Comparison compare.Result   `json:"comparison"`
	Analysis   *analysis.Result `json:"analysis,omitempty"`
}

func render(ctx context.Context, format, title string, cmp compare.Result, an *analysis.Result) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(output{Comparison: cmp, Analysis: an}, "", "  ")
	case "", "markdown", "md":
		return []byte(report.Markdown(&cmp, an)), nil
	case "html":
		doc, err := report.HTML(report.Markdown(&cmp, an), title)
		return []byte(doc), err
	case "pdf":
		doc, err := report.HTML(report.Markdown(&cmp, an), title)
		if err != nil {
			return nil, err
		}
		pdf := report.NewPDFRenderer()
		if !pdf.ChromeAvailable() {
			return nil, fmt.Errorf("chrome not found; set CHROME_PATH")
		}
		info := report.PageInfo{Title: title, QuoteCount: len(cmp.Metrics), Generated: time.Now()}
		if an != nil {
			info.Reference = an.RFQID
			if info.Reference == "" {
				info.Reference = an.RunID
			}
		}
		return pdf.Render(ctx, doc, info)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeOutput(path string, b []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
