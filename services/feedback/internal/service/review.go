package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/utafrali/FeedbackAI/pkg/errors"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/repository"
)

// ReviewEventPublisher announces stored submissions to other systems.
type ReviewEventPublisher interface {
	PublishReviewSubmitted(ctx context.Context, sub *domain.Submission) error
}

// ReviewService implements submission, listing and enrichment of reviews.
type ReviewService struct {
	repo     repository.SubmissionRepository
	feedback *FeedbackService
	events   ReviewEventPublisher
	logger   *slog.Logger
}

// NewReviewService creates a new review service. events may be nil.
func NewReviewService(
	repo repository.SubmissionRepository,
	feedback *FeedbackService,
	events ReviewEventPublisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:     repo,
		feedback: feedback,
		events:   events,
		logger:   logger,
	}
}

// Submit validates the review, generates a reply and stores the submission.
func (s *ReviewService) Submit(ctx context.Context, rating int, review string) (*domain.Submission, error) {
	review = strings.TrimSpace(review)
	if !domain.IsValidRating(rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	if n := utf8.RuneCountInString(review); n < domain.MinReviewLength || n > domain.MaxReviewLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("review must be between %d and %d characters", domain.MinReviewLength, domain.MaxReviewLength))
	}

	sub := &domain.Submission{
		Rating:     rating,
		Review:     review,
		AIResponse: s.feedback.GenerateReply(ctx, rating, review),
	}

	stored, err := s.repo.Append(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.Int("rating", stored.Rating),
		slog.Int("review_chars", utf8.RuneCountInString(stored.Review)),
		slog.String("timestamp", stored.Timestamp),
	)

	s.publishSubmitted(ctx, stored)
	return stored, nil
}

// publishSubmitted is best-effort: the submission is already stored.
func (s *ReviewService) publishSubmitted(ctx context.Context, sub *domain.Submission) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishReviewSubmitted(ctx, sub); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.submitted event",
			slog.String("error", err.Error()),
		)
	}
}

// List returns every stored submission in storage order.
func (s *ReviewService) List(ctx context.Context) ([]domain.Submission, error) {
	subs, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Enrich returns the submission at the 0-based index with a summary and
// recommended actions. They are generated only when the stored summary is
// empty, and the result is not written back to storage.
func (s *ReviewService) Enrich(ctx context.Context, index int) (*domain.Submission, error) {
	subs, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("enrich submission: %w", err)
	}
	if index < 0 || index >= len(subs) {
		return nil, apperrors.NotFound("review", strconv.Itoa(index))
	}

	enriched := subs[index]
	if enriched.IsEnriched() {
		return &enriched, nil
	}

	enriched.AISummary = s.feedback.GenerateSummary(ctx, enriched.Review)
	enriched.RecommendedActions = s.feedback.GenerateActions(ctx, enriched.Rating, enriched.Review)

	s.logger.InfoContext(ctx, "review enriched",
		slog.Int("index", index),
		slog.Int("rating", enriched.Rating),
	)
	return &enriched, nil
}
