package google

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("no credentials") }

func TestNewTokenProvider_Static(t *testing.T) {
	p, err := NewTokenProvider(context.Background(), domain.AuthSettings{Mode: domain.AuthModeStatic, AccessToken: "ya29.token"})
	require.NoError(t, err)

	tok, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok)
	assert.Equal(t, "static", p.Mode())
}

func TestNewTokenProvider_StaticWithoutToken(t *testing.T) {
	_, err := NewTokenProvider(context.Background(), domain.AuthSettings{Mode: domain.AuthModeStatic})
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestNewTokenProvider_UnknownMode(t *testing.T) {
	_, err := NewTokenProvider(context.Background(), domain.AuthSettings{Mode: "kerberos"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestTokenProvider_SourceFailure(t *testing.T) {
	p := NewTokenProviderFromSource(failingSource{}, domain.AuthModeADC)

	_, err := p.GetToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestTokenSourceAdapter(t *testing.T) {
	p := NewTokenProviderFromSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"}), domain.AuthModeStatic)
	ts := NewTokenSource(context.Background(), p)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	_, err = NewTokenSource(context.Background(), NewTokenProviderFromSource(failingSource{}, domain.AuthModeADC)).Token()
	assert.Error(t, err)
}
