// Package llm defines the text-generation collaborator used by the feedback
// services and the decorators applied around it.
package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyReply is returned by Call when the model answered with blank text.
var ErrEmptyReply = errors.New("llm: empty reply")

// Generator produces a completion for a prompt.
type Generator interface {
	// Name identifies the provider and model, e.g. "gemini:gemini-2.5-flash".
	Name() string

	// Generate sends prompt to the model and returns its raw text reply.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Name returns "func".
func (f GeneratorFunc) Name() string { return "func" }

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Result is the outcome of one generation: trimmed text or an error, never both.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the generation produced usable text.
func (r Result) OK() bool { return r.Err == nil }

// Or returns the generated text, or fallback when the generation failed.
func (r Result) Or(fallback string) string {
	if r.Err != nil {
		return fallback
	}
	return r.Text
}

// Call runs one generation and folds a blank reply into ErrEmptyReply.
func Call(ctx context.Context, g Generator, prompt string) Result {
	text, err := g.Generate(ctx, prompt)
	if err != nil {
		return Result{Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Err: ErrEmptyReply}
	}
	return Result{Text: text}
}
