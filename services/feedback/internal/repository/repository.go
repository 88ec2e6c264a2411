package repository

import (
	"context"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

// SubmissionRepository defines the persistence contract for review submissions.
type SubmissionRepository interface {
	// Append stamps the submission with the current time, stores it as the
	// last record and returns the stored copy.
	Append(ctx context.Context, sub *domain.Submission) (*domain.Submission, error)

	// ReadAll returns every stored submission in insertion order. A store
	// that has never been written to yields an empty slice.
	ReadAll(ctx context.Context) ([]domain.Submission, error)
}
