package discoveryengine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/normalise"
	"github.com/custodia-labs/caseforest/internal/logger"
)

func newTypedTestClient(t *testing.T, h http.HandlerFunc) *TypedClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewTypedClient(context.Background(), testSettings(), nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestTypedClient_Search(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTypedTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, searchResponse)
	})

	payload, err := c.Search(context.Background(), domain.SearchRequest{
		Query:          "需要予測",
		PageSize:       30,
		ReturnSnippets: true,
		ExtractiveMax:  1,
		QueryExpansion: domain.ModeAuto,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(gotPath, "/engines/cases/servingConfigs/default_search:search"), gotPath)
	assert.Equal(t, "需要予測", gotBody["query"])
	assert.Equal(t, map[string]any{"condition": "AUTO"}, gotBody["queryExpansionSpec"])

	typed, ok := payload.(*domain.TypedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(12), typed.TotalSize)
	assert.Equal(t, "attr", typed.AttributionToken)
	assert.Equal(t, "まとめ", typed.SummaryText)
	require.Len(t, typed.Documents, 1)
	doc := typed.Documents[0]
	assert.Equal(t, "d1", doc.ID)
	require.NotNil(t, doc.StructData)
	assert.Equal(t, "需要予測の導入", doc.StructData.GetFields()["title"].GetStringValue())
	require.NotNil(t, doc.DerivedStructData)

	env, err := normalise.Normalise(typed, normalise.Options{DisplayCap: 20})
	require.NoError(t, err)
	require.Len(t, env.Results, 1)
	assert.Equal(t, "株式会社サンプル", env.Results[0].EntityName)
	assert.Equal(t, domain.SourceKindPrimary, env.Results[0].SourceKind)
}

func TestTypedClient_MissingDocumentBags(t *testing.T) {
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	c := newTypedTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"results": [{"id": "x"}, {"id": "y", "document": {"id": "y"}}]}`)
	})

	payload, err := c.Search(context.Background(), domain.SearchRequest{Query: "q"})
	require.NoError(t, err)

	typed := payload.(*domain.TypedPayload)
	require.Len(t, typed.Documents, 2)
	assert.Equal(t, "x", typed.Documents[0].ID)
	assert.Nil(t, typed.Documents[0].DerivedStructData)
	assert.Nil(t, typed.Documents[1].StructData)

	env, err := normalise.Normalise(typed, normalise.Options{})
	require.NoError(t, err)
	assert.Empty(t, env.Results)
	assert.Len(t, env.Skipped, 2)
}

func TestTypedClient_APIError(t *testing.T) {
	c := newTypedTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"denied"}}`)
	})

	_, err := c.Search(context.Background(), domain.SearchRequest{Query: "q"})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestTypedRequest_SummarySpec(t *testing.T) {
	req := typedRequest(domain.SearchRequest{
		Query:   "q",
		Summary: &domain.SummarySpec{ResultCount: 5, ModelVersion: "stable", Preamble: "p"},
	})
	require.NotNil(t, req.ContentSearchSpec.SummarySpec)
	assert.Equal(t, int64(5), req.ContentSearchSpec.SummarySpec.SummaryResultCount)
	assert.Equal(t, "stable", req.ContentSearchSpec.SummarySpec.ModelSpec.Version)
	assert.Equal(t, "p", req.ContentSearchSpec.SummarySpec.ModelPromptSpec.Preamble)
	assert.Nil(t, req.ContentSearchSpec.ExtractiveContentSpec)
	assert.Nil(t, req.SpellCorrectionSpec)
}
