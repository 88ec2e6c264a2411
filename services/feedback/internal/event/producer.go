package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/FeedbackAI/pkg/kafka"
	"github.com/utafrali/FeedbackAI/pkg/logger"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

// TopicReviewSubmitted is the Kafka topic for stored review submissions.
var TopicReviewSubmitted = pkgkafka.Topic("review", "submitted")

// Aggregate type constant.
const AggregateTypeReview = "review"

// Source identifier for events originating from the feedback service.
const SourceFeedbackService = "feedback-service"

// ReviewSubmittedData is the payload for a review.submitted event.
type ReviewSubmittedData struct {
	Timestamp  string `json:"timestamp"`
	Rating     int    `json:"rating"`
	Review     string `json:"review"`
	AIResponse string `json:"ai_response"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes feedback domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the feedback service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewSubmitted publishes a review.submitted event. Submissions have
// no identifier of their own, so the timestamp is the aggregate ID.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, sub *domain.Submission) error {
	data := ReviewSubmittedData{
		Timestamp:  sub.Timestamp,
		Rating:     sub.Rating,
		Review:     sub.Review,
		AIResponse: sub.AIResponse,
	}

	event, err := pkgkafka.NewEvent(TopicReviewSubmitted, sub.Timestamp, AggregateTypeReview, SourceFeedbackService, data)
	if err != nil {
		return fmt.Errorf("create review.submitted event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicReviewSubmitted, event); err != nil {
		return fmt.Errorf("publish review.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.submitted event",
		slog.String("event_id", event.EventID),
		slog.Int("rating", sub.Rating),
	)

	return nil
}
