package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/config"
	"github.com/joelkehle/quote-compare/internal/httpapi"
	"github.com/joelkehle/quote-compare/internal/logging"
	"github.com/joelkehle/quote-compare/internal/metrics"
	"github.com/joelkehle/quote-compare/internal/quotecompare"
	"github.com/joelkehle/quote-compare/internal/report"
	"github.com/joelkehle/quote-compare/internal/store"
	"github.com/joelkehle/quote-compare/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTELEndpoint)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", zap.Error(err))
		}
	}()
	metrics.Init()

	registry, err := cfg.Registry()
	if err != nil {
		logger.Fatal("load schemas", zap.Error(err))
	}

	// Without a key every analysis run degrades to neutral results, which is
	// still a valid response, so the server starts anyway.
	completer, err := completion.New(cfg.CompletionOptions())
	if err != nil {
		logger.Warn("completion backend unavailable; analysis will use fallbacks", zap.Error(err))
	}

	var st store.Store = store.NewMemoryStore()
	if cfg.DBPath != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logger.Fatal("open analysis store", zap.String("path", cfg.DBPath), zap.Error(err))
		}
		st = sqliteStore
	}
	defer st.Close()

	svc := quotecompare.New(quotecompare.Config{
		Registry:  registry,
		Completer: completer,
		Store:     st,
		Logger:    logger,
	})

	opts := []httpapi.Option{httpapi.WithLogger(logger.Named("http"))}
	if pdf := report.NewPDFRenderer(); pdf.ChromeAvailable() {
		opts = append(opts, httpapi.WithPDFRenderer(pdf))
	} else {
		logger.Info("chrome not found; pdf reports disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(svc, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("quote-api listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("provider", cfg.CompletionProvider),
		zap.Bool("persistent", cfg.DBPath != ""),
		zap.Int("products", len(registry.Products())),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
