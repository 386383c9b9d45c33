package ai

import (
	"context"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.GeneratorValidator = (*ConfigValidator)(nil)

// ConfigValidator validates generator configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new generator config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateGenerator validates a generator configuration by pinging the provider.
func (v *ConfigValidator) ValidateGenerator(ctx context.Context, config *domain.GeneratorSettings) error {
	return ValidateGeneratorConfig(ctx, config)
}
