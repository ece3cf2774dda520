package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/quote-compare/internal/analysis"
	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/metrics"
	"github.com/joelkehle/quote-compare/internal/quotecompare"
	"github.com/joelkehle/quote-compare/internal/report"
	"github.com/joelkehle/quote-compare/internal/store"
)

var unavailable = completion.CompleterFunc(func(context.Context, completion.Request) (completion.Reply, error) {
	return completion.Reply{}, errors.New("status code: 503")
})

func newServerForTest(opts ...Option) http.Handler {
	svc := quotecompare.New(quotecompare.Config{Completer: unavailable, Store: store.NewMemoryStore()})
	return NewServer(svc, opts...)
}

const twoQuotes = `[
	{"id":"q1","insurer_name":"Alpha General","premium":100000,"coverage_amount":10000000},
	{"id":"q2","insurer_name":"Beta Assurance","premium":150000,"coverage_amount":10000000}
]`

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rr)
	assert.Equal(t, false, body["ok"])
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, rr.Body.String())
	return e["code"].(string)
}

func TestHealthAndProducts(t *testing.T) {
	h := newServerForTest()

	rr := get(t, h, "/v1/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr)["ok"])

	rr = get(t, h, "/v1/products")
	require.Equal(t, http.StatusOK, rr.Code)
	products, ok := decode(t, rr)["products"].([]any)
	require.True(t, ok)
	assert.Contains(t, products, "Group Health Insurance")
}

func TestCompareEndpoint(t *testing.T) {
	h := newServerForTest()
	rr := postJSON(t, h, "/v1/compare", `{"product_name":"Group Health Insurance","quotes":`+twoQuotes+`}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode(t, rr)
	assert.Equal(t, true, body["schema_registered"])
	best := body["best_quotes"].(map[string]any)
	assert.Equal(t, "q1", best["lowest_premium"].(map[string]any)["quote_id"])
}

func TestEmptyQuoteListIsBadRequest(t *testing.T) {
	h := newServerForTest()
	for _, path := range []string{"/v1/compare", "/v1/analyze", "/v1/report"} {
		rr := postJSON(t, h, path, `{"product_name":"Cyber Insurance","quotes":[]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Equal(t, CodeNoQuotes, errorCode(t, rr), path)
	}
}

func TestDuplicateQuoteIDsAreBadRequest(t *testing.T) {
	h := newServerForTest()
	rr := postJSON(t, h, "/v1/analyze", `{"product_name":"Cyber Insurance","quotes":[{"id":"a","premium":1},{"id":"A","premium":2}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeDuplicateID, errorCode(t, rr))
}

func TestMalformedBodies(t *testing.T) {
	h := newServerForTest()

	rr := postJSON(t, h, "/v1/compare", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeInvalidRequest, errorCode(t, rr))

	rr = postJSON(t, h, "/v1/compare", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeInvalidRequest, errorCode(t, rr))
}

func TestAnalyzePersistsAndServesLatest(t *testing.T) {
	h := newServerForTest()

	rr := get(t, h, "/v1/rfqs/rfq-9/analysis")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, rr))

	rr = postJSON(t, h, "/v1/analyze", `{"product_name":"Group Health Insurance","rfq":{"id":"rfq-9","title":"Renewal"},"quotes":`+twoQuotes+`}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res analysis.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.SynthesisFallback)
	assert.Len(t, res.DegradedDimensions, len(analysis.Dimensions))
	score, ok := res.PricingAnalysis.ScoreFor("q1")
	require.True(t, ok)
	assert.Equal(t, analysis.NeutralScore, score)

	rr = get(t, h, "/v1/rfqs/rfq-9/analysis")
	require.Equal(t, http.StatusOK, rr.Code)
	var latest analysis.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &latest))
	assert.Equal(t, res.RunID, latest.RunID)
}

func TestReportFormats(t *testing.T) {
	h := newServerForTest()
	body := `{"product_name":"Group Health Insurance","quotes":` + twoQuotes + `,"format":"%s"}`

	rr := postJSON(t, h, "/v1/report", strings.Replace(body, "%s", "markdown", 1))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rr.Body.String(), "## Side-by-Side Comparison")
	assert.NotContains(t, rr.Body.String(), "## AI Recommendation")

	rr = postJSON(t, h, "/v1/report", strings.Replace(body, "%s", "html", 1))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "<table>")

	rr = postJSON(t, h, "/v1/report", strings.Replace(body, "%s", "pdf", 1))
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.Equal(t, CodeUnsupported, errorCode(t, rr))

	rr = postJSON(t, h, "/v1/report", strings.Replace(body, "%s", "docx", 1))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type stubPDF struct {
	html string
	info report.PageInfo
}

func (s *stubPDF) Render(_ context.Context, htmlDoc string, info report.PageInfo) ([]byte, error) {
	s.html, s.info = htmlDoc, info
	return []byte("%PDF-1.4 stub"), nil
}

func TestReportIncludesSavedAnalysisAndRendersPDF(t *testing.T) {
	pdf := &stubPDF{}
	h := newServerForTest(WithPDFRenderer(pdf))

	rr := postJSON(t, h, "/v1/analyze", `{"product_name":"Group Health Insurance","rfq":{"id":"rfq-3"},"quotes":`+twoQuotes+`}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, h, "/v1/report", `{"product_name":"Group Health Insurance","rfq_id":"rfq-3","quotes":`+twoQuotes+`,"format":"pdf"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))
	assert.Contains(t, pdf.html, "AI Recommendation")
	assert.Equal(t, "rfq-3", pdf.info.Reference)
	assert.Equal(t, "Group Health Insurance", pdf.info.Title)
	assert.Equal(t, 2, pdf.info.QuoteCount)

	// An unknown rfq_id still yields the comparison-only report.
	rr = postJSON(t, h, "/v1/report", `{"product_name":"Group Health Insurance","rfq_id":"missing","quotes":`+twoQuotes+`}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "AI Recommendation")
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Init()
	h := newServerForTest()
	_ = get(t, h, "/v1/health")
	rr := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "quotecompare_http_requests_total")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newServerForTest()
	assert.Equal(t, http.StatusNotFound, get(t, h, "/v1/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, get(t, h, "/v1/compare").Code)
}
