package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

func TestExtractPromptName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid prompt URI", uri: "caseforest://prompts/summary", expected: "summary"},
		{name: "invalid prefix", uri: "file://prompts/summary", expected: ""},
		{name: "nested path", uri: "caseforest://prompts/a/b", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractPromptName(tt.uri))
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleHistoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns entries as JSON", func(t *testing.T) {
		history := &mockHistoryService{display: []domain.QueryHistoryEntry{{Query: "製造業", Count: 2}}}
		server := newTestServer(t, &mockSearchService{}, history)

		res, err := server.handleHistoryResource(ctx, readRequest("caseforest://history"))

		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, "application/json", res.Contents[0].MIMEType)
		assert.Contains(t, res.Contents[0].Text, `"query": "製造業"`)
		assert.Contains(t, res.Contents[0].Text, `"count": 2`)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		history := &mockHistoryService{err: errors.New("boom")}
		server := newTestServer(t, &mockSearchService{}, history)

		_, err := server.handleHistoryResource(ctx, readRequest("caseforest://history"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing history")
	})
}

func TestServer_handlePromptResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns template", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search:  &mockSearchService{},
			History: &mockHistoryService{},
			Prompts: mockPrompts{"summary": "rules\n=====\n"},
		})
		require.NoError(t, err)

		res, err := server.handlePromptResource(ctx, readRequest("caseforest://prompts/summary"))

		require.NoError(t, err)
		assert.Equal(t, "rules\n=====\n", res.Contents[0].Text)
		assert.Equal(t, "text/plain", res.Contents[0].MIMEType)
	})

	t.Run("unknown prompt is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search:  &mockSearchService{},
			History: &mockHistoryService{},
			Prompts: mockPrompts{},
		})
		require.NoError(t, err)

		_, err = server.handlePromptResource(ctx, readRequest("caseforest://prompts/missing"))
		assert.Error(t, err)
	})

	t.Run("no prompt store is not found", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, &mockHistoryService{})

		_, err := server.handlePromptResource(ctx, readRequest("caseforest://prompts/summary"))
		assert.Error(t, err)
	})
}
