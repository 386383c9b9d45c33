// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// TextGenerator produces text from a prompt.
// This is an optional service - when nil, the pipeline falls back to the
// summary returned by the search backend.
//
// Implementations may include:
//   - Gemini on Vertex AI
//   - OpenAI-compatible chat completions
//   - Anthropic messages
//   - a local Ollama server
type TextGenerator interface {
	// Generate produces text from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
// Zero values leave the provider default in place.
type GenerateOptions struct {
	// Temperature controls randomness (0.0 = deterministic).
	// Nil keeps the provider default; a pointer is needed because 0 is meaningful.
	Temperature *float32

	// TopP is the nucleus sampling threshold.
	TopP float32

	// TopK limits sampling to the K most likely tokens.
	TopK int32

	// MaxOutputTokens is the maximum number of tokens to generate.
	MaxOutputTokens int32
}

// GeneratorValidator checks generator settings against the live service.
type GeneratorValidator interface {
	// ValidateGenerator returns nil when generation is disabled or the service answers.
	ValidateGenerator(ctx context.Context, config *domain.GeneratorSettings) error
}
