package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/utafrali/FeedbackAI/pkg/health"
	"github.com/utafrali/FeedbackAI/pkg/httputil"
	"github.com/utafrali/FeedbackAI/pkg/middleware"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/config"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/service"
)

// Service identity reported by the root endpoint.
const (
	ServiceTitle   = "Fynd AI Assessment API"
	ServiceVersion = "1.0.0"
)

// Services groups the application services the router exposes.
type Services struct {
	Predictions *service.PredictionService
	Reviews     *service.ReviewService
	Analytics   *service.AnalyticsService
}

// NewRouter creates a chi router with all feedback service routes registered.
// ctx bounds background work started by middleware.
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	svcs Services,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		ExposedHeaders:   []string{middleware.CorrelationIDHeader},
		AllowCredentials: true,
		Environment:      cfg.Environment,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout()))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("feedback"))
	r.Use(middleware.Tracing("feedback"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/", rootHandler)

	// Health check endpoints
	r.Get("/health", healthHandler.LivenessHandler())
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	// Metrics and pprof endpoints with IP allowlist.
	middleware.RegisterMetrics(r, cfg.MetricsAllowedCIDRs, logger)
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// Prediction API endpoints
	predictionHandler := NewPredictionHandler(svcs.Predictions, logger)

	r.Route("/api/predictions", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/predict", predictionHandler.Predict)
		for _, a := range domain.Approaches() {
			r.Post("/predict/"+string(a), predictionHandler.PredictWith(a))
		}
	})

	// Review API endpoints
	reviewHandler := NewReviewHandler(svcs.Reviews, svcs.Analytics, logger)

	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/submit", reviewHandler.SubmitReview)
		r.With(middleware.CacheControl("no-store")).Get("/all", reviewHandler.ListReviews)
		r.With(middleware.CacheControl("no-store")).Get("/analytics", reviewHandler.Analytics)
		r.Post("/{review_id}/enrich", reviewHandler.EnrichReview)
	})

	return r
}

// rootResponse is the body of GET /.
type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
	Redoc   string `json:"redoc"`
}

func rootHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, rootResponse{
		Message: ServiceTitle,
		Version: ServiceVersion,
		Docs:    "/docs",
		Redoc:   "/redoc",
	})
}
