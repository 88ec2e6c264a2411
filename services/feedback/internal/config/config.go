package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/FeedbackAI/pkg/config"
	"github.com/utafrali/FeedbackAI/pkg/httpclient"
)

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// MaxLLMCallsPerRequest is the most sequential LLM calls a single request
// makes (enrich generates a summary and then actions).
const MaxLLMCallsPerRequest = 2

const (
	requestHeadroom = 15 * time.Second
	writeHeadroom   = 10 * time.Second
)

// Config holds all configuration for the feedback service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"FEEDBACK_HTTP_PORT" envDefault:"8000"`

	// Overrides the request deadline derived from LLM_TIMEOUT when set.
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT"`

	// Submission storage
	SubmissionsFile string `env:"SUBMISSIONS_FILE" envDefault:"data/submissions.csv"`

	// LLM
	LLMProvider  string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	GeminiModel  string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	LLMRPS       float64       `env:"LLM_RPS" envDefault:"0"`
	LLMBurst     int           `env:"LLM_BURST" envDefault:"1"`

	// Circuit breaker around the LLM transport
	LLMBreakerTimeout      time.Duration `env:"LLM_BREAKER_TIMEOUT" envDefault:"30s"`
	LLMBreakerFailureRatio float64       `env:"LLM_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	LLMBreakerMinRequests  uint32        `env:"LLM_BREAKER_MIN_REQUESTS" envDefault:"5"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,https://ai-feedback-system.netlify.app" envSeparator:","`

	// Rate limiting (per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Metrics and pprof endpoints (IP allowlist in CIDR notation)
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
	PprofAllowedCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from .env (if present) and environment variables.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load feedback config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SubmissionsFile == "" {
		return fmt.Errorf("SUBMISSIONS_FILE is required")
	}
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER is %q", ProviderGemini)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderMock, c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	if c.HTTPRequestTimeout != 0 && c.HTTPRequestTimeout <= c.llmBudget() {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT must exceed %d x LLM_TIMEOUT (%s), got %s",
			MaxLLMCallsPerRequest, c.llmBudget(), c.HTTPRequestTimeout)
	}
	if c.LLMRPS < 0 {
		return fmt.Errorf("LLM_RPS must not be negative, got %f", c.LLMRPS)
	}
	if c.LLMRPS > 0 && c.LLMBurst < 1 {
		return fmt.Errorf("LLM_BURST must be at least 1, got %d", c.LLMBurst)
	}
	if c.LLMBreakerFailureRatio <= 0 || c.LLMBreakerFailureRatio > 1.0 {
		return fmt.Errorf("LLM_BREAKER_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.LLMBreakerFailureRatio)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// llmBudget is the longest a request can spend waiting on the LLM.
func (c *Config) llmBudget() time.Duration {
	return MaxLLMCallsPerRequest * c.LLMTimeout
}

// RequestTimeout is the per-request handler deadline. It outlasts every LLM
// call a request can make so timed-out generations still reach their
// fallbacks.
func (c *Config) RequestTimeout() time.Duration {
	if c.HTTPRequestTimeout > 0 {
		return c.HTTPRequestTimeout
	}
	return c.llmBudget() + requestHeadroom
}

// WriteTimeout is the HTTP server write deadline. It outlasts RequestTimeout
// so the handler's response can always be written.
func (c *Config) WriteTimeout() time.Duration {
	return c.RequestTimeout() + writeHeadroom
}

// BreakerConfig returns the circuit breaker settings for the LLM transport.
func (c *Config) BreakerConfig() httpclient.CircuitBreakerConfig {
	cb := httpclient.DefaultCircuitBreakerConfig("llm-" + c.LLMProvider)
	cb.Timeout = c.LLMBreakerTimeout
	cb.FailureRatio = c.LLMBreakerFailureRatio
	cb.MinRequests = c.LLMBreakerMinRequests
	return cb
}
