// Package gemini implements llm.Generator on top of the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"github.com/utafrali/FeedbackAI/pkg/httpclient"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoCandidates is returned when the API answers without any text.
var ErrNoCandidates = errors.New("gemini: response has no text candidates")

// Config holds Gemini client settings.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	// Breaker guards the HTTP transport handed to the SDK.
	Breaker httpclient.CircuitBreakerConfig

	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

// Client is a thin wrapper around the genai client. Pacing, deadlines and
// instrumentation are applied by llm middleware.
type Client struct {
	cli     *genai.Client
	model   string
	breaker *httpclient.BreakerTransport
}

// New builds a Gemini client whose HTTP traffic passes through a circuit
// breaker. It does not contact the API.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = httpclient.DefaultCircuitBreakerConfig("gemini")
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	httpClient, breaker := httpclient.NewBreakerClient(httpCfg, cfg.Breaker, logger)

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{cli: cli, model: cfg.Model, breaker: breaker}, nil
}

// Name returns "gemini:<model>".
func (c *Client) Name() string { return "gemini:" + c.model }

// Generate sends prompt as a single user turn and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return textOf(resp)
}

// Check fails while the circuit breaker is open.
func (c *Client) Check(context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("gemini circuit breaker is open: %w", httpclient.ErrCircuitOpen)
	}
	return nil
}

// textOf joins the non-thought text parts of the first candidate.
func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", ErrNoCandidates
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", ErrNoCandidates
	}
	return sb.String(), nil
}
