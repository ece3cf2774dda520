package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// landscapeQuoteCount is the number of quotes above which the side-by-side
// table no longer fits an A4 portrait page.
const landscapeQuoteCount = 4

const (
	a4Short = 8.27
	a4Long  = 11.69
)

// PageInfo labels every printed page of a report.
type PageInfo struct {
	Title      string
	Reference  string // RFQ id or analysis run id
	QuoteCount int
	Generated  time.Time
}

// PDFRenderer prints HTML reports to A4 PDF with a headless Chromium.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
}

type PDFOption func(*PDFRenderer)

func WithChromePath(path string) PDFOption { return func(r *PDFRenderer) { r.chromePath = path } }

func WithRenderTimeout(d time.Duration) PDFOption { return func(r *PDFRenderer) { r.timeout = d } }

func NewPDFRenderer(opts ...PDFOption) *PDFRenderer {
	r := &PDFRenderer{chromePath: detectChromePath(), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PDFRenderer) Render(ctx context.Context, htmlDoc string, info PageInfo) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var pdf []byte
	params := printParams(info)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString([]byte(htmlDoc))),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

// printParams lays out the page: report title and reference in the header,
// generation date and page numbers in the footer. Wide comparisons print
// landscape.
func printParams(info PageInfo) *page.PrintToPDFParams {
	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = "Insurance Quote Comparison"
	}
	header := fmt.Sprintf(`<div style="width:100%%;font-size:8px;color:#555;padding:0 0.45in;display:flex;justify-content:space-between;">`+
		`<span>%s</span><span>%s</span></div>`, html.EscapeString(title), html.EscapeString(info.Reference))

	generated := ""
	if !info.Generated.IsZero() {
		generated = "Generated " + info.Generated.Format("2 Jan 2006")
	}
	footer := fmt.Sprintf(`<div style="width:100%%;font-size:8px;color:#666;padding:0 0.45in;display:flex;justify-content:space-between;">`+
		`<span>%s</span><span>Page <span class="pageNumber"></span> of <span class="totalPages"></span></span></div>`, generated)

	return page.PrintToPDF().
		WithPrintBackground(true).
		WithDisplayHeaderFooter(true).
		WithHeaderTemplate(header).
		WithFooterTemplate(footer).
		WithLandscape(info.QuoteCount > landscapeQuoteCount).
		WithPaperWidth(a4Short).
		WithPaperHeight(a4Long).
		WithMarginTop(0.6).
		WithMarginBottom(0.6).
		WithMarginLeft(0.45).
		WithMarginRight(0.45)
}

// ChromeAvailable reports whether a Chromium binary was found.
func (r *PDFRenderer) ChromeAvailable() bool { return r.chromePath != "" }

func detectChromePath() string {
	candidates := []string{
		os.Getenv("CHROME_PATH"),
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
	}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
