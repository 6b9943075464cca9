// Package api exposes the upload endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/metrics"
	"fjacquet/sms-ledger/internal/models"
)

// UserHeader carries the caller's user id. Authentication happens upstream.
const UserHeader = "X-User-ID"

// Importer is the ingest surface the handlers need.
type Importer interface {
	ImportSMS(ctx context.Context, userID string, bank models.Bank, text string) (*ingest.Summary, error)
	ImportPDF(ctx context.Context, userID string, bank models.Bank, r io.Reader) (*ingest.Summary, error)
	Transactions(ctx context.Context, userID string) ([]models.Transaction, error)
}

// Options configures a Server.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	DefaultBank    models.Bank
	DemoUserID     string
	SinkName       string
	Gatherer       prometheus.Gatherer // nil serves the default registry
}

// Server routes HTTP requests to an Importer.
type Server struct {
	importer Importer
	opts     Options
	metrics  metrics.Collector
	logger   logging.Logger
	router   *mux.Router
}

// NewServer creates a Server and its routes.
func NewServer(importer Importer, opts Options, collector metrics.Collector, logger logging.Logger) *Server {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.DemoUserID == "" {
		opts.DemoUserID = models.DemoUserID
	}
	if opts.DefaultBank == "" {
		opts.DefaultBank = models.BankOther
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}

	s := &Server{importer: importer, opts: opts, metrics: collector, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.metricsMiddleware)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/upload/sms", s.handleUploadSMS).Methods(http.MethodPost)
	r.HandleFunc("/api/upload/pdf", s.handleUploadPDF).Methods(http.MethodPost)
	r.HandleFunc("/api/transactions", s.handleListTransactions).Methods(http.MethodGet)

	gatherer := s.opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: 2 * s.opts.ReadTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", logging.F("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
