package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/llm"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/prompt"
)

// Fallback texts used when generation fails.
const (
	FallbackSummary = "Customer feedback about their experience"
	FallbackActions = "• Follow up with customer\n• Review internal processes\n• Implement improvements based on feedback"
)

// FallbackReply is the generic thank-you used when no reply could be generated.
func FallbackReply(rating int) string {
	return fmt.Sprintf("Thank you for your %d-star review! We appreciate your feedback and will use it to improve our service.", rating)
}

// FeedbackService generates customer-facing texts for a review. Every
// operation returns usable text: failures are replaced by fixed fallbacks.
type FeedbackService struct {
	llm    llm.Generator
	logger *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(gen llm.Generator, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{
		llm:    gen,
		logger: logger,
	}
}

// GenerateReply writes a short reply to the customer.
func (s *FeedbackService) GenerateReply(ctx context.Context, rating int, review string) string {
	return s.generate(ctx, "reply", prompt.Reply(rating, review)).Or(FallbackReply(rating))
}

// GenerateSummary writes a one-sentence summary of the review.
func (s *FeedbackService) GenerateSummary(ctx context.Context, review string) string {
	return s.generate(ctx, "summary", prompt.Summary(review)).Or(FallbackSummary)
}

// GenerateActions suggests follow-up actions as "• " bullets.
func (s *FeedbackService) GenerateActions(ctx context.Context, rating int, review string) string {
	return s.generate(ctx, "actions", prompt.Actions(rating, review)).Or(FallbackActions)
}

func (s *FeedbackService) generate(ctx context.Context, op, p string) llm.Result {
	res := llm.Call(ctx, s.llm, p)
	if !res.OK() {
		llm.FallbacksTotal.WithLabelValues(op).Inc()
		s.logger.WarnContext(ctx, "using fallback text after llm failure",
			slog.String("operation", op),
			slog.String("error", res.Err.Error()),
		)
	}
	return res
}
