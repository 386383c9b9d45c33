package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

func sampleOutcome() *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Query:           "製造業 DX",
		Summary:         "- **A社** は検査を自動化した。",
		SummarySpans:    []domain.TextSpan{{Text: "- "}, {Text: "A社", Emphasized: true}, {Text: " は検査を自動化した。"}},
		Recommendations: []string{"検査", "IoT", "品質管理"},
		TotalSize:       12,
		Results: []domain.RenderedResult{
			{
				SearchResult: domain.SearchResult{Title: "A社 導入事例", Link: "https://example.com/a", EntityName: "A社"},
				SnippetSpans: []domain.TextSpan{{Text: "検査を"}, {Text: "自動化", Emphasized: true}},
			},
			{
				SearchResult: domain.SearchResult{Title: "B社 導入事例", Link: "https://example.com/b"},
				SnippetSpans: []domain.TextSpan{{Text: domain.NoOverviewText}},
			},
		},
	}
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "Search case studies", searchCmd.Short)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	s, _, _ := testServices()
	restore := withServices(s)
	defer restore()

	_, err := execute(t, "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasFlags(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
	assert.NotNil(t, searchCmd.Flags().Lookup("plain"))
}

func TestSearchCmd_PrintsOutcome(t *testing.T) {
	s, search, _ := testServices()
	search.outcome = sampleOutcome()
	restore := withServices(s)
	defer restore()

	out, err := execute(t, "search", "製造業 DX")

	require.NoError(t, err)
	assert.Equal(t, []string{"製造業 DX"}, search.queries)
	assert.Contains(t, out, "Query: 製造業 DX")
	assert.Contains(t, out, "- **A社** は検査を自動化した。")
	assert.Contains(t, out, "Try: 検査 / IoT / 品質管理")
	assert.Contains(t, out, "Results (2 of about 12)")
	assert.Contains(t, out, "[1] A社 導入事例")
	assert.Contains(t, out, "検査を**自動化**")
	assert.Contains(t, out, domain.NoOverviewText)
}

func TestSearchCmd_Limit(t *testing.T) {
	s, search, _ := testServices()
	search.outcome = sampleOutcome()
	restore := withServices(s)
	defer restore()

	out, err := execute(t, "search", "--limit", "1", "製造業 DX")

	require.NoError(t, err)
	assert.Contains(t, out, "[1] A社 導入事例")
	assert.NotContains(t, out, "B社 導入事例")
}

func TestSearchCmd_Message(t *testing.T) {
	s, _, _ := testServices()
	restore := withServices(s)
	defer restore()

	out, err := execute(t, "search", "zzz")

	require.NoError(t, err)
	assert.Contains(t, out, domain.NoResultsMessage)
	assert.NotContains(t, out, "Results")
}

func TestSearchCmd_JSON(t *testing.T) {
	s, search, _ := testServices()
	search.outcome = sampleOutcome()
	restore := withServices(s)
	defer restore()

	out, err := execute(t, "search", "--json", "製造業 DX")

	require.NoError(t, err)
	var got domain.SearchOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "製造業 DX", got.Query)
	assert.Len(t, got.Results, 2)
}

func TestSearchCmd_Error(t *testing.T) {
	s, search, _ := testServices()
	search.err = domain.ErrSessionBusy
	restore := withServices(s)
	defer restore()

	_, err := execute(t, "search", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionBusy)
	assert.Contains(t, err.Error(), "search failed")
}

func TestRenderer_Spans(t *testing.T) {
	spans := []domain.TextSpan{{Text: "a"}, {Text: "B", Emphasized: true}, {Text: "c"}}

	plain := renderer{}
	assert.Equal(t, "a**B**c", plain.spans(spans))
	assert.Equal(t, "", plain.spans(nil))
}
