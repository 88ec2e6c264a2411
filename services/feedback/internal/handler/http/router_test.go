package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/FeedbackAI/pkg/errors"
	"github.com/utafrali/FeedbackAI/pkg/health"
	"github.com/utafrali/FeedbackAI/pkg/httputil"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/config"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/llm"
	llmmock "github.com/utafrali/FeedbackAI/services/feedback/internal/llm/mock"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/repository"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/repository/csvstore"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/service"
)

// =============================================================================
// Mock SubmissionRepository
// =============================================================================

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) Append(ctx context.Context, sub *domain.Submission) (*domain.Submission, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) ReadAll(ctx context.Context) ([]domain.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

// =============================================================================
// Test helpers
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "test",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		// httptest requests come from 192.0.2.1, outside this range.
		MetricsAllowedCIDRs: []string{"127.0.0.0/8"},
		PprofAllowedCIDRs:   []string{"127.0.0.0/8"},
	}
}

func newTestRouter(t *testing.T, repo repository.SubmissionRepository, gen llm.Generator) http.Handler {
	t.Helper()
	return newTestRouterWithConfig(t, testConfig(), repo, gen)
}

func newTestRouterWithConfig(t *testing.T, cfg *config.Config, repo repository.SubmissionRepository, gen llm.Generator) http.Handler {
	t.Helper()
	logger := testLogger()
	feedback := service.NewFeedbackService(gen, logger)
	svcs := Services{
		Predictions: service.NewPredictionService(gen, logger),
		Reviews:     service.NewReviewService(repo, feedback, nil, logger),
		Analytics:   service.NewAnalyticsService(repo, logger),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRouter(ctx, cfg, svcs, health.NewHandler(), logger)
}

func newCSVRouter(t *testing.T) http.Handler {
	t.Helper()
	fixed := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	store := csvstore.New(filepath.Join(t.TempDir(), "submissions.csv"), csvstore.WithClock(func() time.Time { return fixed }))
	return newTestRouter(t, store, llmmock.New())
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

// =============================================================================
// Root and health
// =============================================================================

func TestRoot(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Fynd AI Assessment API","version":"1.0.0","docs":"/docs","redoc":"/redoc"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestMetrics_OutsideAllowlistForbidden(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h := newCSVRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/reviews/submit", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

// =============================================================================
// Predictions
// =============================================================================

func TestPredict_DefaultsToFewShot(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/predictions/predict", map[string]string{
		"review_text": "Amazing food and friendly staff, will recommend!",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.PredictionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, domain.ApproachFewShot, res.ApproachUsed)
	assert.True(t, res.JSONValid)
	assert.GreaterOrEqual(t, res.PredictedStars, 1)
	assert.LessOrEqual(t, res.PredictedStars, 5)
}

func TestPredict_Validation(t *testing.T) {
	h := newCSVRouter(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing text", map[string]string{}, "review_text"},
		{"blank text", map[string]string{"review_text": "   "}, "review_text"},
		{"unknown approach", map[string]string{"review_text": "ok", "approach": "one-shot"}, "approach"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/predictions/predict", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", e.Code)
			assert.Contains(t, e.Fields, tt.field)
		})
	}
}

func TestPredict_MalformedBody(t *testing.T) {
	h := newCSVRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predictions/predict", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestPredict_UnsupportedContentType(t *testing.T) {
	h := newCSVRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predictions/predict", strings.NewReader("review_text=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestPredictWith_FixedApproaches(t *testing.T) {
	h := newCSVRouter(t)

	for _, a := range domain.Approaches() {
		t.Run(string(a)+"/query", func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/predictions/predict/"+string(a)+"?review_text=Terrible+and+rude", nil)

			require.Equal(t, http.StatusOK, rec.Code)
			var res domain.PredictionResult
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			assert.Equal(t, a, res.ApproachUsed)
		})

		t.Run(string(a)+"/body", func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/predictions/predict/"+string(a), map[string]string{
				"review_text": "Great place",
			})

			require.Equal(t, http.StatusOK, rec.Code)
			var res domain.PredictionResult
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			assert.Equal(t, a, res.ApproachUsed)
		})
	}
}

func TestPredictWith_MissingText(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/predictions/predict/zero-shot", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestPredict_LLMFailureStillOK(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	h := newTestRouter(t, new(mockSubmissionRepo), gen)

	rec := doJSON(t, h, http.MethodPost, "/api/predictions/predict", map[string]string{
		"review_text": "fine",
		"approach":    "chain-of-thought",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.PredictionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, domain.PredictionResult{
		PredictedStars: 3,
		Explanation:    "Error: quota exceeded",
		ApproachUsed:   domain.ApproachChainOfThought,
		JSONValid:      false,
	}, res)
}

// =============================================================================
// Reviews
// =============================================================================

func TestSubmitReview_ReturnsStoredSubmission(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/reviews/submit", map[string]any{
		"rating": 2,
		"review": "  The soup was cold.  ",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var sub domain.Submission
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sub))
	assert.Equal(t, "2025-06-01 12:30:45", sub.Timestamp)
	assert.Equal(t, 2, sub.Rating)
	assert.Equal(t, "The soup was cold.", sub.Review)
	assert.NotEmpty(t, sub.AIResponse)
	assert.Empty(t, sub.AISummary)
}

func TestSubmitReview_Validation(t *testing.T) {
	h := newCSVRouter(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"rating zero", map[string]any{"rating": 0, "review": "ok"}, "rating"},
		{"rating six", map[string]any{"rating": 6, "review": "ok"}, "rating"},
		{"missing review", map[string]any{"rating": 3}, "review"},
		{"blank review", map[string]any{"rating": 3, "review": "   "}, "review"},
		{"long review", map[string]any{"rating": 3, "review": strings.Repeat("x", 5001)}, "review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/reviews/submit", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", e.Code)
			assert.Contains(t, e.Fields, tt.field)
		})
	}
}

func TestSubmitReview_StorageFailure(t *testing.T) {
	repo := new(mockSubmissionRepo)
	repo.On("Append", mock.Anything, mock.Anything).
		Return(nil, apperrors.Storage("append submission", errors.New("read-only file system")))
	h := newTestRouter(t, repo, llmmock.New())

	rec := doJSON(t, h, http.MethodPost, "/api/reviews/submit", map[string]any{"rating": 5, "review": "great"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "STORAGE_ERROR", e.Code)
	assert.NotContains(t, e.Message, "read-only", "cause must not leak to clients")
}

func TestListReviews(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/reviews/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reviews":[]}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	for _, r := range []int{5, 1} {
		require.Equal(t, http.StatusOK,
			doJSON(t, h, http.MethodPost, "/api/reviews/submit", map[string]any{"rating": r, "review": "text"}).Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/reviews/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ReviewListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Reviews, 2)
	assert.Equal(t, 5, list.Reviews[0].Rating)
	assert.Equal(t, 1, list.Reviews[1].Rating)
}

func TestAnalytics(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/reviews/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_reviews":0,"average_rating":0,"rating_distribution":{},"recent_reviews":[]}`, rec.Body.String())

	for _, r := range []int{5, 5, 4, 1} {
		require.Equal(t, http.StatusOK,
			doJSON(t, h, http.MethodPost, "/api/reviews/submit", map[string]any{"rating": r, "review": "text"}).Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/reviews/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.AnalyticsSnapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, 4, snap.TotalReviews)
	assert.Equal(t, 3.75, snap.AverageRating)
	assert.Equal(t, map[string]int{"5": 2, "4": 1, "1": 1}, snap.RatingDistribution)
	assert.Len(t, snap.RecentReviews, 4)
}

func TestEnrichReview(t *testing.T) {
	h := newCSVRouter(t)

	require.Equal(t, http.StatusOK,
		doJSON(t, h, http.MethodPost, "/api/reviews/submit", map[string]any{"rating": 2, "review": "Slow service today"}).Code)

	rec := doJSON(t, h, http.MethodPost, "/api/reviews/0/enrich", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var enriched domain.Submission
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&enriched))
	assert.Equal(t, "Slow service today", enriched.Review)
	assert.NotEmpty(t, enriched.AISummary)
	assert.NotEmpty(t, enriched.RecommendedActions)

	// Enrichment is not written back.
	rec = doJSON(t, h, http.MethodGet, "/api/reviews/all", nil)
	var list ReviewListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Reviews, 1)
	assert.Empty(t, list.Reviews[0].AISummary)
	assert.Empty(t, list.Reviews[0].RecommendedActions)
}

func TestEnrichReview_HangingLLMAnswersWithFallback(t *testing.T) {
	cfg := testConfig()
	cfg.LLMTimeout = 200 * time.Millisecond

	var calls atomic.Int32
	hanging := llm.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		calls.Add(1)
		<-ctx.Done()
		return "", ctx.Err()
	})
	gen := llm.Wrap(hanging, llm.WithTimeout(cfg.LLMTimeout))

	repo := new(mockSubmissionRepo)
	repo.On("ReadAll", mock.Anything).Return([]domain.Submission{
		{Timestamp: "2025-06-01 12:30:45", Rating: 2, Review: "Cold food", AIResponse: "Sorry"},
	}, nil)

	srv := httptest.NewUnstartedServer(newTestRouterWithConfig(t, cfg, repo, gen))
	srv.Config.WriteTimeout = cfg.WriteTimeout()
	srv.Start()
	defer srv.Close()

	start := time.Now()
	resp, err := srv.Client().Post(srv.URL+"/api/reviews/0/enrich", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var enriched domain.Submission
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&enriched))
	assert.Equal(t, service.FallbackSummary, enriched.AISummary)
	assert.Equal(t, service.FallbackActions, enriched.RecommendedActions)
	assert.Equal(t, int32(config.MaxLLMCallsPerRequest), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), config.MaxLLMCallsPerRequest*cfg.LLMTimeout)
}

func TestEnrichReview_NotFound(t *testing.T) {
	h := newCSVRouter(t)

	for _, id := range []string{"0", "7", "-1"} {
		t.Run(id, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/reviews/"+id+"/enrich", nil)

			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
		})
	}
}

func TestEnrichReview_InvalidID(t *testing.T) {
	h := newCSVRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/reviews/abc/enrich", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeError(t, rec).Code)
}
