package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/repository"
)

// AnalyticsService computes aggregate statistics over stored submissions.
type AnalyticsService struct {
	repo   repository.SubmissionRepository
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(repo repository.SubmissionRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
	}
}

// Snapshot returns the review count, the mean rating rounded half-to-even
// to two decimals, the rating distribution and the last RecentLimit
// submissions in storage order.
func (s *AnalyticsService) Snapshot(ctx context.Context) (*domain.AnalyticsSnapshot, error) {
	subs, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics snapshot: %w", err)
	}

	snap := domain.EmptySnapshot()
	if len(subs) == 0 {
		return snap, nil
	}

	var sum int
	for _, sub := range subs {
		sum += sub.Rating
		snap.RatingDistribution[strconv.Itoa(sub.Rating)]++
	}

	snap.TotalReviews = len(subs)
	snap.AverageRating = round2(float64(sum) / float64(len(subs)))

	recent := subs[max(0, len(subs)-domain.RecentLimit):]
	snap.RecentReviews = append(snap.RecentReviews, recent...)

	s.logger.DebugContext(ctx, "analytics snapshot computed",
		slog.Int("total_reviews", snap.TotalReviews),
		slog.Float64("average_rating", snap.AverageRating),
	)
	return snap, nil
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
