package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/utafrali/FeedbackAI/pkg/httputil"
	"github.com/utafrali/FeedbackAI/pkg/validator"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// PredictionHandler handles HTTP requests for rating prediction endpoints.
type PredictionHandler struct {
	service *service.PredictionService
	logger  *slog.Logger
}

// NewPredictionHandler creates a new prediction HTTP handler.
func NewPredictionHandler(svc *service.PredictionService, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PredictRequest is the JSON request body for a prediction.
type PredictRequest struct {
	ReviewText string `json:"review_text" validate:"required,notblank"`
	Approach   string `json:"approach" validate:"omitempty,oneof=zero-shot few-shot chain-of-thought"`
}

// reviewTextBody is the optional JSON body of the fixed-approach endpoints.
type reviewTextBody struct {
	ReviewText string `json:"review_text"`
}

// --- Handlers ---

// Predict handles POST /api/predictions/predict
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req PredictRequest
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

	approach, err := domain.ParseApproach(req.Approach)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	h.predict(w, r, req.ReviewText, approach)
}

// PredictWith returns a handler for one of the fixed-approach endpoints,
// e.g. POST /api/predictions/predict/few-shot. The review text comes from
// the review_text query parameter, or from a JSON body when the parameter
// is absent.
func (h *PredictionHandler) PredictWith(approach domain.Approach) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := r.URL.Query().Get("review_text")
		if text == "" {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

			var body reviewTextBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
				httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
				})
				return
			}
			text = body.ReviewText
		}

		h.predict(w, r, text, approach)
	}
}

func (h *PredictionHandler) predict(w http.ResponseWriter, r *http.Request, text string, approach domain.Approach) {
	result, err := h.service.Predict(r.Context(), text, approach)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
