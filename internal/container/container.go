// Package container wires the application's dependencies from configuration.
// Commands build one Container and read collaborators from it.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fjacquet/sms-ledger/internal/api"
	"fjacquet/sms-ledger/internal/categorizer"
	"fjacquet/sms-ledger/internal/config"
	"fjacquet/sms-ledger/internal/extractor"
	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/metrics"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/normalizer"
	"fjacquet/sms-ledger/internal/pdfparser"
	"fjacquet/sms-ledger/internal/sink"
	"fjacquet/sms-ledger/internal/store"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "smsledger"

// Container holds all application dependencies. It is immutable after
// creation.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.CategoryStore
	aiClient    *categorizer.GeminiClient
	categorizer *categorizer.Categorizer
	registry    *extractor.Registry
	sink        sink.Store
	metrics     metrics.Collector
	gatherer    prometheus.Gatherer
	ingest      *ingest.Service
}

type buildOptions struct {
	logger       logging.Logger
	registerer   prometheus.Registerer
	gatherer     prometheus.Gatherer
	pdfExtractor pdfparser.PDFExtractor
}

// Option customizes NewContainer.
type Option func(*buildOptions)

// WithLogger replaces the logger built from configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *buildOptions) { o.logger = logger }
}

// WithRegistry registers metrics on reg instead of the default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *buildOptions) {
		o.registerer = reg
		o.gatherer = reg
	}
}

// WithPDFExtractor replaces the PDF text extractor.
func WithPDFExtractor(e pdfparser.PDFExtractor) Option {
	return func(o *buildOptions) { o.pdfExtractor = e }
}

// NewContainer creates and wires all application dependencies. The
// transaction store is opened with ctx.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	bo := buildOptions{registerer: prometheus.DefaultRegisterer, gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&bo)
	}

	logger := bo.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	collector := metrics.NewPrometheusCollector(MetricsNamespace, bo.registerer)

	categoryStore := store.NewCategoryStore(cfg.Categories.File, cfg.Categories.MerchantsFile, logger)
	keywordConfigs, err := categoryStore.LoadCategories()
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	var keywords categorizer.KeywordTable
	if len(keywordConfigs) > 0 {
		keywords = categorizer.NewKeywordTable(keywordConfigs)
	}

	var aiClient *categorizer.GeminiClient
	catOpts := categorizer.Options{
		Store:     categoryStore,
		Keywords:  keywords,
		AITimeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		Logger:    logger,
	}
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient = categorizer.NewGeminiClient(cfg.AI.APIKey, cfg.AI.Model, logger)
		catOpts.AI = aiClient
		logger.Info("AI categorization enabled", logging.F("model", cfg.AI.Model))
	} else {
		logger.Info("AI categorization disabled")
	}
	cat := categorizer.NewCategorizer(catOpts)

	registry := extractor.DefaultRegistry()
	if err := registry.RegisterPatterns(cfg.Ingest.Patterns); err != nil {
		return nil, fmt.Errorf("registering patterns: %w", err)
	}
	ext := extractor.New(registry, cfg.Ingest.Workers, logger)

	norm := normalizer.New(cat, logger, normalizer.WithLocation(cfg.Location()))

	pdfExtractor := bo.pdfExtractor
	if pdfExtractor == nil {
		pdfExtractor = pdfparser.NewRealPDFExtractor()
	}
	pdf := pdfparser.NewParser(pdfExtractor, logger)

	sinkOpts := sink.Options{
		Driver:    cfg.Sink.Driver,
		DSN:       cfg.Sink.DSN,
		RedisAddr: cfg.Sink.RedisAddr,
	}
	if cfg.Sink.Breaker.Enabled {
		sinkOpts.Breaker = &sink.BreakerOptions{
			MaxFailures:      uint32(cfg.Sink.Breaker.MaxFailures),
			OpenTimeout:      time.Duration(cfg.Sink.Breaker.OpenTimeoutSecs) * time.Second,
			HalfOpenRequests: uint32(cfg.Sink.Breaker.HalfOpenRequests),
		}
	}
	txStore, err := sink.Open(ctx, sinkOpts, collector, logger)
	if err != nil {
		if aiClient != nil {
			_ = aiClient.Close()
		}
		return nil, fmt.Errorf("opening %s sink: %w", cfg.Sink.Driver, err)
	}

	svc := ingest.NewService(ingest.Options{
		Extractor:  ext,
		Normalizer: norm,
		PDF:        pdf,
		Sink:       txStore,
		Accounts:   txStore,
		Metrics:    collector,
		Logger:     logger,
	})

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldSink, txStore.Name()),
		logging.F("strategies", cat.StrategyNames()),
		logging.F("patterns", len(cfg.Ingest.Patterns)))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       categoryStore,
		aiClient:    aiClient,
		categorizer: cat,
		registry:    registry,
		sink:        txStore,
		metrics:     collector,
		gatherer:    bo.gatherer,
		ingest:      svc,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetStore returns the category store.
func (c *Container) GetStore() *store.CategoryStore {
	return c.store
}

// GetRegistry returns the matcher registry.
func (c *Container) GetRegistry() *extractor.Registry {
	return c.registry
}

// GetSink returns the transaction store.
func (c *Container) GetSink() sink.Store {
	return c.sink
}

// GetMetrics returns the metrics collector.
func (c *Container) GetMetrics() metrics.Collector {
	return c.metrics
}

// GetIngest returns the import service.
func (c *Container) GetIngest() *ingest.Service {
	return c.ingest
}

// DefaultBank returns the configured bank used when a request names none.
func (c *Container) DefaultBank() models.Bank {
	return models.ParseBank(c.config.Ingest.DefaultBank)
}

// NewServer builds the HTTP server over the import service.
func (c *Container) NewServer() *api.Server {
	return api.NewServer(c.ingest, api.Options{
		Addr:           c.config.Server.Addr,
		MaxUploadBytes: c.config.MaxUploadBytes(),
		ReadTimeout:    time.Duration(c.config.Server.ReadTimeoutSeconds) * time.Second,
		DefaultBank:    c.DefaultBank(),
		DemoUserID:     c.config.DemoUserID,
		SinkName:       c.sink.Name(),
		Gatherer:       c.gatherer,
	}, c.metrics, c.logger)
}

// Close releases the transaction store and the AI client.
func (c *Container) Close() error {
	var firstErr error
	if err := c.sink.Close(); err != nil {
		firstErr = fmt.Errorf("closing sink: %w", err)
	}
	if c.aiClient != nil {
		if err := c.aiClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing AI client: %w", err)
		}
	}
	c.logger.Info("Container closed")
	return firstErr
}
