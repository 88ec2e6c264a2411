package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

// --- Mock Generator ---

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Name() string { return "mock-generator" }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- Mock Repository ---

type mockSubmissionRepository struct {
	mock.Mock
}

func (m *mockSubmissionRepository) Append(ctx context.Context, sub *domain.Submission) (*domain.Submission, error) {
	args := m.Called(ctx, sub)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Submission) (*domain.Submission, error)); ok {
		return fn(ctx, sub)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionRepository) ReadAll(ctx context.Context) ([]domain.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewSubmitted(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stamped mimics the repository: it returns a copy of the argument with a timestamp.
func stamped(ts string) func(context.Context, *domain.Submission) (*domain.Submission, error) {
	return func(_ context.Context, sub *domain.Submission) (*domain.Submission, error) {
		out := *sub
		out.Timestamp = ts
		return &out, nil
	}
}
