package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/markup"
)

const defaultHistoryLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query, for example an industry or a business problem"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default all)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Query           string               `json:"query"`
	Message         string               `json:"message,omitempty"`
	Summary         string               `json:"summary,omitempty"`
	Recommendations []string             `json:"recommendations"`
	Results         []SearchResultOutput `json:"results"`
	Count           int                  `json:"count"`
	TotalSize       int64                `json:"total_size"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	EntityName string `json:"entity_name,omitempty"`
	Snippet    string `json:"snippet"`
	Excerpt    string `json:"excerpt,omitempty"`
	Source     string `json:"source"`
}

// HistoryInput is the input schema for the history tools.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of queries to return (default 10)"`
}

// HistoryOutput is the output schema for the history tools.
type HistoryOutput struct {
	Queries []QueryOutput `json:"queries"`
}

// QueryOutput is one history entry.
type QueryOutput struct {
	Query     string `json:"query"`
	Count     int    `json:"count"`
	Pinned    bool   `json:"pinned"`
	UpdatedAt int64  `json:"updated_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search case studies and summarise the most relevant ones",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "popular_queries",
		Description: "List the most frequently searched queries",
	}, s.handlePopular)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_queries",
		Description: "List pinned queries followed by recently searched ones",
	}, s.handleRecent)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	outcome, err := s.ports.Search.Run(ctx, s.session, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	results := outcome.Results
	if input.Limit > 0 && len(results) > input.Limit {
		results = results[:input.Limit]
	}

	output := SearchOutput{
		Query:           outcome.Query,
		Message:         outcome.Message,
		Summary:         outcome.Summary,
		Recommendations: outcome.Recommendations,
		Results:         make([]SearchResultOutput, len(results)),
		Count:           len(results),
		TotalSize:       outcome.TotalSize,
	}
	for i := range results {
		r := results[i]
		output.Results[i] = SearchResultOutput{
			Title:      r.Title,
			Link:       r.Link,
			EntityName: r.EntityName,
			Snippet:    markup.Spans(r.SnippetSpans).Text(),
			Excerpt:    r.ExtractiveExcerpt,
			Source:     r.SourceKind.String(),
		}
	}

	return nil, output, nil
}

func (s *Server) handlePopular(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	entries, err := s.ports.History.ListByFrequency(ctx, historyLimit(input.Limit))
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	return nil, historyOutput(entries), nil
}

func (s *Server) handleRecent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	entries, err := s.ports.History.ListForDisplay(ctx, historyLimit(input.Limit))
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	return nil, historyOutput(entries), nil
}

func historyLimit(n int) int {
	if n <= 0 {
		return defaultHistoryLimit
	}
	return n
}

func historyOutput(entries []domain.QueryHistoryEntry) HistoryOutput {
	out := HistoryOutput{Queries: make([]QueryOutput, len(entries))}
	for i, e := range entries {
		out.Queries[i] = QueryOutput{
			Query:     e.Query,
			Count:     e.Count,
			Pinned:    e.IsPinned,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return out
}
