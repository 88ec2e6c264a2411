package service

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/utafrali/FeedbackAI/pkg/errors"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/llm"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/parser"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/prompt"
)

// PredictionService predicts star ratings for review text.
type PredictionService struct {
	llm    llm.Generator
	logger *slog.Logger
}

// NewPredictionService creates a new prediction service.
func NewPredictionService(gen llm.Generator, logger *slog.Logger) *PredictionService {
	return &PredictionService{
		llm:    gen,
		logger: logger,
	}
}

// Predict rates reviewText with the given approach; an empty approach means
// few-shot. Input problems are returned as errors before the model is
// called. Upstream and parse failures never are: they produce a fallback
// result with JSONValid false.
func (s *PredictionService) Predict(ctx context.Context, reviewText string, approach domain.Approach) (domain.PredictionResult, error) {
	reviewText = strings.TrimSpace(reviewText)
	if reviewText == "" {
		return domain.PredictionResult{}, apperrors.InvalidInput("review_text must not be empty")
	}
	a, err := domain.ParseApproach(string(approach))
	if err != nil {
		return domain.PredictionResult{}, apperrors.InvalidInput(err.Error())
	}

	res := llm.Call(ctx, s.llm, prompt.ForApproach(a, reviewText))
	if !res.OK() {
		llm.FallbacksTotal.WithLabelValues("predict").Inc()
		s.logger.WarnContext(ctx, "prediction fell back after llm failure",
			slog.String("approach", string(a)),
			slog.String("error", res.Err.Error()),
		)
		return parser.Fallback(a, parser.ErrorReason(res.Err)), nil
	}

	result := parser.Parse(res.Text, a)
	if !result.JSONValid {
		llm.FallbacksTotal.WithLabelValues("predict_parse").Inc()
		s.logger.WarnContext(ctx, "prediction reply could not be parsed",
			slog.String("approach", string(a)),
			slog.String("reason", result.Explanation),
		)
	}

	s.logger.DebugContext(ctx, "rating predicted",
		slog.String("approach", string(a)),
		slog.Int("predicted_stars", result.PredictedStars),
		slog.Bool("json_valid", result.JSONValid),
	)
	return result, nil
}
