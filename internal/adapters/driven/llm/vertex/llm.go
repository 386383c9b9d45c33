// Package vertex provides a text generator backed by Gemini.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/google"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Ensure Generator implements the interface.
var _ driven.TextGenerator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultModel    = "gemini-1.5-pro-002"
	DefaultLocation = "us-west1"
)

// Config holds configuration for the Gemini generator.
type Config struct {
	// ProjectID and Location select the Vertex AI endpoint.
	ProjectID string
	Location  string

	// Model is the Gemini model name (default: gemini-1.5-pro-002).
	Model string

	// APIKey switches to the Gemini Developer API instead of Vertex AI.
	APIKey string

	// BaseURL overrides the API root.
	BaseURL string

	// HTTPClient overrides the transport.
	HTTPClient *http.Client
}

// Generator produces text with Gemini.
type Generator struct {
	client  *genai.Client
	model   string
	limiter *google.RateLimiter
}

// NewGenerator creates a Gemini generator.
// Without an API key the client authenticates with Application Default Credentials.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{HTTPClient: cfg.HTTPClient}
	if cfg.APIKey != "" {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	} else {
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("%w: GENERATOR_PROJECT_ID", domain.ErrMissingConfig)
		}
		if cfg.Location == "" {
			cfg.Location = DefaultLocation
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.ProjectID
		cc.Location = cfg.Location
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{
		client:  client,
		model:   cfg.Model,
		limiter: google.NewRateLimiter(google.ServiceGenerate),
	}, nil
}

// Generate produces text from a prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	logger.Debug("generate[%s]: prompt %d bytes", g.model, len(prompt))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), contentConfig(opts))
	if err != nil {
		g.observe(err)
		return "", fmt.Errorf("%w: gemini: %w", domain.ErrGeneratorUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no text", domain.ErrGeneratorUnavailable)
	}
	return text, nil
}

// observe backs the limiter off after a 429. Gemini reports errors as
// genai.APIError rather than googleapi.Error and carries no Retry-After.
func (g *Generator) observe(err error) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		g.limiter.Backoff(0)
		return
	}
	g.limiter.Observe(err)
}

func contentConfig(opts driven.GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{Temperature: opts.Temperature}
	if opts.TopP > 0 {
		cfg.TopP = genai.Ptr(opts.TopP)
	}
	if opts.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(opts.TopK))
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}
	return cfg
}

// ModelName returns the Gemini model name.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping checks that the model exists and the credentials are accepted.
func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
