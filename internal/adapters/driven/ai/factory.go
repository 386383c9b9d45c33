// Package ai provides factory functions for creating text generator adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/caseforest/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/llm/vertex"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateGenerator creates the generator selected by settings.
// Returns nil if generation is disabled or not configured.
func CreateGenerator(ctx context.Context, settings *domain.GeneratorSettings) (driven.TextGenerator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.GeneratorProviderVertex:
		return vertex.NewGenerator(ctx, vertex.Config{
			ProjectID: settings.ProjectID,
			Location:  settings.Location,
			Model:     settings.Model,
			BaseURL:   settings.BaseURL,
		})

	case domain.GeneratorProviderOpenAI:
		return openaillm.NewGenerator(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.GeneratorProviderAnthropic:
		return anthropic.NewGenerator(anthropic.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.GeneratorProviderOllama:
		return ollama.NewGenerator(ollama.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("%w: generator provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateAndValidateGenerator creates a generator and validates connectivity.
// Returns nil without error when generation is disabled.
func CreateAndValidateGenerator(ctx context.Context, settings *domain.GeneratorSettings) (driven.TextGenerator, error) {
	gen, err := CreateGenerator(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err)
	}
	if gen == nil {
		return nil, nil
	}

	if err := ping(ctx, gen); err != nil {
		gen.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrGeneratorUnavailable, err)
	}
	return gen, nil
}

// ValidateGeneratorConfig creates a generator and pings it, then releases it.
func ValidateGeneratorConfig(ctx context.Context, settings *domain.GeneratorSettings) error {
	gen, err := CreateGenerator(ctx, settings)
	if err != nil {
		return err
	}
	if gen == nil {
		return nil
	}
	defer gen.Close()
	return ping(ctx, gen)
}

// GenerateOptions maps settings to per-call generation options.
func GenerateOptions(settings domain.GeneratorSettings) driven.GenerateOptions {
	temp := settings.Temperature
	return driven.GenerateOptions{
		Temperature:     &temp,
		TopP:            settings.TopP,
		TopK:            settings.TopK,
		MaxOutputTokens: settings.MaxOutputTokens,
	}
}

func ping(ctx context.Context, gen driven.TextGenerator) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return gen.Ping(ctx)
}
