package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/utafrali/FeedbackAI/pkg/logger"
	"github.com/utafrali/FeedbackAI/pkg/tracing"
)

// Middleware decorates a Generator with a cross-cutting concern.
type Middleware func(Generator) Generator

// Wrap applies middlewares left to right: Wrap(g, A, B) is A(B(g)).
func Wrap(g Generator, mws ...Middleware) Generator {
	out := g
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

type decorated struct {
	next Generator
	fn   func(ctx context.Context, prompt string) (string, error)
}

func (d *decorated) Name() string { return d.next.Name() }

func (d *decorated) Generate(ctx context.Context, prompt string) (string, error) {
	return d.fn(ctx, prompt)
}

// Unwrap returns the decorated generator.
func (d *decorated) Unwrap() Generator { return d.next }

// WithTimeout bounds every generation by d. A non-positive d disables it.
func WithTimeout(d time.Duration) Middleware {
	return func(next Generator) Generator {
		if d <= 0 {
			return next
		}
		return &decorated{next: next, fn: func(ctx context.Context, prompt string) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Generate(ctx, prompt)
		}}
	}
}

// RateLimit paces generations with a token bucket. A non-positive rps
// disables it; burst is raised to at least 1.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Generator) Generator {
		if rps <= 0 {
			return next
		}
		limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		return &decorated{next: next, fn: func(ctx context.Context, prompt string) (string, error) {
			if err := limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("llm rate limit: %w", err)
			}
			return next.Generate(ctx, prompt)
		}}
	}
}

// Instrument records a span, request metrics and a log line per generation.
func Instrument(l *slog.Logger) Middleware {
	tracer := tracing.Tracer("github.com/utafrali/FeedbackAI/services/feedback/internal/llm")
	return func(next Generator) Generator {
		provider := next.Name()
		return &decorated{next: next, fn: func(ctx context.Context, prompt string) (string, error) {
			ctx, span := tracer.Start(ctx, "llm.generate",
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("llm.provider", provider),
					attribute.Int("llm.prompt_bytes", len(prompt)),
				),
			)
			defer span.End()

			start := time.Now()
			text, err := next.Generate(ctx, prompt)
			elapsed := time.Since(start)

			requestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
			status := statusOf(err)
			requestsTotal.WithLabelValues(provider, status).Inc()

			log := logger.WithContext(ctx, l)
			if err != nil {
				tracing.RecordError(span, err)
				log.WarnContext(ctx, "llm generation failed",
					slog.String("provider", provider),
					slog.String("status", status),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return "", err
			}

			span.SetAttributes(attribute.Int("llm.reply_bytes", len(text)))
			log.DebugContext(ctx, "llm generation completed",
				slog.String("provider", provider),
				slog.Int("prompt_bytes", len(prompt)),
				slog.Int("reply_bytes", len(text)),
				slog.Duration("duration", elapsed),
			)
			return text, nil
		}}
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
