package vertex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

func newTestGenerator(t *testing.T, h http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g, err := NewGenerator(context.Background(), Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return g
}

func TestGenerator_Generate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"- **A社** 要約\n"}]}}]}`)
	})

	out, err := g.Generate(context.Background(), "プロンプト", driven.GenerateOptions{
		Temperature:     genai.Ptr[float32](0),
		TopP:            1,
		TopK:            32,
		MaxOutputTokens: 2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "- **A社** 要約", out)
	assert.True(t, strings.HasSuffix(gotPath, "models/"+DefaultModel+":generateContent"), gotPath)

	gen, ok := gotBody["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), gen["temperature"])
	assert.Equal(t, float64(2048), gen["maxOutputTokens"])
}

func TestGenerator_EmptyResponse(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	_, err := g.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
}

func TestGenerator_RateLimitedBacksOff(t *testing.T) {
	calls := 0
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`)
	})

	_, err := g.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	assert.Equal(t, 1, calls)
	assert.False(t, g.limiter.Allow(), "limiter should hold requests after a 429")
}

func TestGenerator_APIErrorDoesNotBackOff(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := g.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.Error(t, err)
	assert.True(t, g.limiter.Allow())
}

func TestGenerator_APIError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := g.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
}

func TestNewGenerator_VertexRequiresProject(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestContentConfig(t *testing.T) {
	cfg := contentConfig(driven.GenerateOptions{})
	assert.Nil(t, cfg.Temperature)
	assert.Nil(t, cfg.TopP)
	assert.Nil(t, cfg.TopK)
	assert.Zero(t, cfg.MaxOutputTokens)

	cfg = contentConfig(driven.GenerateOptions{Temperature: genai.Ptr[float32](0), TopP: 1, TopK: 32, MaxOutputTokens: 10})
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0), *cfg.Temperature)
	assert.Equal(t, float32(1), *cfg.TopP)
	assert.Equal(t, float32(32), *cfg.TopK)
	assert.Equal(t, int32(10), cfg.MaxOutputTokens)
}
