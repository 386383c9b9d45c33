package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// CloudPlatformScope grants access to every Google Cloud API used here.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Ensure TokenProvider implements the interface.
var _ driven.TokenProvider = (*TokenProvider)(nil)

// TokenProvider serves access tokens from an oauth2.TokenSource.
// Tokens are cached and refreshed when they expire.
type TokenProvider struct {
	source oauth2.TokenSource
	mode   domain.AuthMode
}

// NewTokenProvider builds a provider for the configured auth mode.
func NewTokenProvider(ctx context.Context, cfg domain.AuthSettings) (*TokenProvider, error) {
	var ts oauth2.TokenSource
	switch cfg.Mode {
	case domain.AuthModeADC, "":
		src, err := googleoauth.DefaultTokenSource(ctx, CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("application default credentials: %w", err)
		}
		ts = src
	case domain.AuthModeMetadata:
		ts = googleoauth.ComputeTokenSource("", CloudPlatformScope)
	case domain.AuthModeStatic:
		if cfg.AccessToken == "" {
			return nil, fmt.Errorf("%w: ACCESS_TOKEN", domain.ErrMissingConfig)
		}
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	default:
		return nil, fmt.Errorf("%w: auth mode %q", domain.ErrUnsupportedType, cfg.Mode)
	}
	mode := cfg.Mode
	if mode == "" {
		mode = domain.AuthModeADC
	}
	return &TokenProvider{source: oauth2.ReuseTokenSource(nil, ts), mode: mode}, nil
}

// NewTokenProviderFromSource wraps an existing token source.
func NewTokenProviderFromSource(ts oauth2.TokenSource, mode domain.AuthMode) *TokenProvider {
	return &TokenProvider{source: oauth2.ReuseTokenSource(nil, ts), mode: mode}
}

// GetToken returns a valid access token.
func (p *TokenProvider) GetToken(_ context.Context) (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	}
	return tok.AccessToken, nil
}

// Mode returns the auth mode name.
func (p *TokenProvider) Mode() string {
	return string(p.mode)
}

// TokenSourceAdapter adapts a driven.TokenProvider to oauth2.TokenSource.
// This allows Google API clients to share the application's token management.
type TokenSourceAdapter struct {
	provider driven.TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
// The returned TokenSource can be used with option.WithTokenSource() when
// creating Google API services.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{provider: provider, ctx: ctx}
}

// Token implements oauth2.TokenSource.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}, nil
}
