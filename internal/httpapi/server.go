package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joelkehle/quote-compare/internal/analysis"
	"github.com/joelkehle/quote-compare/internal/compare"
	"github.com/joelkehle/quote-compare/internal/logging"
	"github.com/joelkehle/quote-compare/internal/metrics"
	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/quotecompare"
	"github.com/joelkehle/quote-compare/internal/report"
	"github.com/joelkehle/quote-compare/internal/store"
)

const (
	CodeInvalidRequest = "invalid_request"
	CodeNoQuotes       = "no_quotes"
	CodeDuplicateID    = "duplicate_quote_id"
	CodeNotFound       = "not_found"
	CodeUnsupported    = "unsupported"
	CodeInternal       = "internal"
)

const maxBodyBytes = 8 << 20

// Service is the quote comparison backend the server exposes.
type Service interface {
	CompareQuotes(ctx context.Context, productName string, quotes []quote.Quote) (compare.Result, error)
	OrchestrateAnalysis(ctx context.Context, quotes []quote.Quote, rfq quote.RFQContext, productName string) (analysis.Result, error)
	LatestAnalysis(ctx context.Context, rfqID string) (analysis.Result, error)
	Products() []string
}

type PDFRenderer interface {
	Render(ctx context.Context, htmlDoc string, info report.PageInfo) ([]byte, error)
}

type Server struct {
	svc            Service
	pdf            PDFRenderer
	logger         *zap.Logger
	requestTimeout time.Duration
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.logger = logging.OrNop(l) } }

func WithPDFRenderer(r PDFRenderer) Option { return func(s *Server) { s.pdf = r } }

// WithRequestTimeout bounds every request. Analysis runs make several
// sequential completion calls, so keep this well above the completion timeout.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.requestTimeout = d } }

func NewServer(svc Service, opts ...Option) http.Handler {
	s := &Server{svc: svc, logger: zap.NewNop(), requestTimeout: 5 * time.Minute}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/v1/health", s.handleHealth)
	r.Get("/v1/products", s.handleProducts)
	r.Post("/v1/compare", s.handleCompare)
	r.Post("/v1/analyze", s.handleAnalyze)
	r.Post("/v1/report", s.handleReport)
	r.Get("/v1/rfqs/{rfqID}/analysis", s.handleLatestAnalysis)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// observe logs each request and records it under its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(route, status, time.Since(start))
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":      code,
			"message":   message,
			"transient": status >= 500,
		},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "read body: "+err.Error())
		return false
	}
	if len(strings.TrimSpace(string(blob))) == 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "request body is required")
		return false
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

type compareRequest struct {
	ProductName string        `json:"product_name"`
	Quotes      []quote.Quote `json:"quotes"`
}

type analyzeRequest struct {
	ProductName string           `json:"product_name"`
	RFQ         quote.RFQContext `json:"rfq"`
	Quotes      []quote.Quote    `json:"quotes"`
}

type reportRequest struct {
	ProductName string        `json:"product_name"`
	Quotes      []quote.Quote `json:"quotes"`
	RFQID       string        `json:"rfq_id"`
	Format      string        `json:"format"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "products": len(s.svc.Products())})
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": s.svc.Products()})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Quotes) == 0 {
		writeError(w, http.StatusBadRequest, CodeNoQuotes, "at least one quote is required")
		return
	}
	res, err := s.svc.CompareQuotes(r.Context(), req.ProductName, req.Quotes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Quotes) == 0 {
		writeError(w, http.StatusBadRequest, CodeNoQuotes, "at least one quote is required")
		return
	}
	res, err := s.svc.OrchestrateAnalysis(r.Context(), req.Quotes, req.RFQ, req.ProductName)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	rfqID := chi.URLParam(r, "rfqID")
	res, err := s.svc.LatestAnalysis(r.Context(), rfqID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReport renders the comparison for the posted quotes, with the latest
// saved analysis for rfq_id when one exists.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Quotes) == 0 {
		writeError(w, http.StatusBadRequest, CodeNoQuotes, "at least one quote is required")
		return
	}
	cmp, err := s.svc.CompareQuotes(r.Context(), req.ProductName, req.Quotes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	var an *analysis.Result
	if req.RFQID != "" {
		latest, err := s.svc.LatestAnalysis(r.Context(), req.RFQID)
		switch {
		case err == nil:
			an = &latest
		case !errors.Is(err, store.ErrNotFound):
			s.writeServiceError(w, err)
			return
		}
	}
	md := report.Markdown(&cmp, an)

	switch strings.ToLower(strings.TrimSpace(req.Format)) {
	case "", "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, md)
	case "html":
		doc, err := report.HTML(md, req.ProductName)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, doc)
	case "pdf":
		if s.pdf == nil {
			writeError(w, http.StatusNotImplemented, CodeUnsupported, "pdf rendering is not configured")
			return
		}
		doc, err := report.HTML(md, req.ProductName)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		info := report.PageInfo{Title: req.ProductName, Reference: req.RFQID, QuoteCount: len(req.Quotes), Generated: time.Now()}
		if an != nil && info.Reference == "" {
			info.Reference = an.RunID
		}
		pdf, err := s.pdf.Render(r.Context(), doc, info)
		if err != nil {
			s.writeServiceError(w, fmt.Errorf("render pdf: %w", err))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	default:
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("unknown format %q", req.Format))
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, compare.ErrNoQuotes):
		writeError(w, http.StatusBadRequest, CodeNoQuotes, err.Error())
	case errors.Is(err, quotecompare.ErrDuplicateQuoteID):
		writeError(w, http.StatusBadRequest, CodeDuplicateID, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}
