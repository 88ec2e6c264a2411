package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/FeedbackAI/pkg/httputil"
	"github.com/utafrali/FeedbackAI/pkg/validator"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/service"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	reviews   *service.ReviewService
	analytics *service.AnalyticsService
	logger    *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, analytics *service.AnalyticsService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:   reviews,
		analytics: analytics,
		logger:    logger,
	}
}

// --- Request DTOs ---

// SubmitReviewRequest is the JSON request body for submitting a review.
type SubmitReviewRequest struct {
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
	Review string `json:"review" validate:"required,notblank,max=5000"`
}

// --- Response DTOs ---

// ReviewListResponse wraps every stored submission.
type ReviewListResponse struct {
	Reviews []domain.Submission `json:"reviews"`
}

// --- Handlers ---

// SubmitReview handles POST /api/reviews/submit
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sub, err := h.reviews.Submit(r.Context(), req.Rating, req.Review)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sub)
}

// ListReviews handles GET /api/reviews/all
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	subs, err := h.reviews.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if subs == nil {
		subs = []domain.Submission{}
	}

	httputil.WriteJSON(w, http.StatusOK, ReviewListResponse{Reviews: subs})
}

// Analytics handles GET /api/reviews/analytics
func (h *ReviewHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analytics.Snapshot(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, snap)
}

// EnrichReview handles POST /api/reviews/{review_id}/enrich
func (h *ReviewHandler) EnrichReview(w http.ResponseWriter, r *http.Request) {
	index, ok := httputil.ParseIndex(w, chi.URLParam(r, "review_id"))
	if !ok {
		return
	}

	sub, err := h.reviews.Enrich(r.Context(), index)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sub)
}
