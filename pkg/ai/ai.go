package ai

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model produced no content.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrInvalidJSON is returned when a structured response could not be
	// decoded, even after recovery.
	ErrInvalidJSON = errors.New("model response is not valid JSON")
	// ErrQuotaExceeded is returned when the provider rejects a request
	// because of rate limits or exhausted quota.
	ErrQuotaExceeded = errors.New("model quota exceeded")
)

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	Thinking      string   // Reasoning effort, empty disables it
	StrictSchema  bool     // Ask the provider to enforce the schema exactly
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// Add accumulates m into the receiver and recomputes the throughput.
func (mm *ModelMetrics) Add(m ModelMetrics) {
	mm.InputTokens += m.InputTokens
	mm.OutputTokens += m.OutputTokens
	mm.TotalTokens += m.TotalTokens
	mm.DurationMs += m.DurationMs
	if mm.DurationMs > 0 {
		tps := float64(mm.TotalTokens) * 1000 / float64(mm.DurationMs)
		mm.TokenPerSecond = float32(int(tps*100+0.5)) / 100
	}
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithThinking returns a GenerateOption that sets the reasoning effort.
func WithThinking(thinking string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Thinking = thinking
	}
}

// WithStrictSchema toggles provider-side schema enforcement. Schemas with
// free-form objects must run with strict=false.
func WithStrictSchema(strict bool) GenerateOption {
	return func(o *GenerateOptions) {
		o.StrictSchema = strict
	}
}

// ApplyOptions folds opts over base.
func ApplyOptions(base GenerateOptions, opts ...GenerateOption) GenerateOptions {
	for _, o := range opts {
		o(&base)
	}
	return base
}

// Client is the model contract used by the extractor and the analyzer.
type Client interface {
	// GenerateCompletion returns the plain-text answer to prompt.
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	// GenerateCompletionWithFormat asks for JSON matching the schema
	// reflected from out and decodes the answer into out.
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	ResetMetrics()
	GetMetrics() ModelMetrics
}
