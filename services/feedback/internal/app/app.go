package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/FeedbackAI/pkg/health"
	pkgkafka "github.com/utafrali/FeedbackAI/pkg/kafka"
	"github.com/utafrali/FeedbackAI/pkg/tracing"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/config"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/event"
	handler "github.com/utafrali/FeedbackAI/services/feedback/internal/handler/http"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/llm"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/llm/gemini"
	llmmock "github.com/utafrali/FeedbackAI/services/feedback/internal/llm/mock"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/repository/csvstore"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/service"
)

// CheckedGenerator is an llm.Generator that can report its own readiness.
type CheckedGenerator interface {
	llm.Generator
	Check(ctx context.Context) error
}

// App wires together all dependencies and runs the feedback service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	stopBackground context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "feedback",
		ServiceVersion: handler.ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize the LLM generator.
	base, err := NewGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	gen := llm.Wrap(base,
		llm.Instrument(logger),
		llm.RateLimit(cfg.LLMRPS, cfg.LLMBurst),
		llm.WithTimeout(cfg.LLMTimeout),
	)
	logger.Info("llm generator initialized",
		slog.String("generator", base.Name()),
		slog.Duration("timeout", cfg.LLMTimeout),
		slog.Float64("rps", cfg.LLMRPS),
	)

	// Submission storage.
	store := csvstore.New(cfg.SubmissionsFile)
	logger.Info("submission store initialized", slog.String("path", store.Path()))

	// Initialize Kafka producer when enabled.
	var (
		producer  *pkgkafka.Producer
		publisher service.ReviewEventPublisher
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	feedbackService := service.NewFeedbackService(gen, logger)
	svcs := handler.Services{
		Predictions: service.NewPredictionService(gen, logger),
		Reviews:     service.NewReviewService(store, feedbackService, publisher, logger),
		Analytics:   service.NewAnalyticsService(store, logger),
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("storage", store.Check)
	healthHandler.RegisterCritical("llm", base.Check)
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	// HTTP router. Background middleware work stops on shutdown.
	bgCtx, stopBackground := context.WithCancel(context.Background())
	router := handler.NewRouter(bgCtx, cfg, svcs, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
		stopBackground: stopBackground,
	}, nil
}

// NewGenerator builds the configured LLM backend without middleware.
func NewGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (CheckedGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderMock:
		logger.Warn("using the offline mock LLM generator")
		return llmmock.New(), nil
	case config.ProviderGemini:
		g, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.LLMTimeout,
			Breaker: cfg.BreakerConfig(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Drain in-flight HTTP requests with a 10-second deadline.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.stopBackground()

	// Flush pending spans after the HTTP drain.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
