package domain

// Fixed user-facing strings.
const (
	// NoResultsMessage is shown when a search fails or finds nothing.
	NoResultsMessage = "結果が取得できませんでした。他の検索ワードでお試しください。"

	// NoOverviewText replaces a snippet the backend reported as unavailable.
	NoOverviewText = "このページの概要は提供されていません。"

	// GeneratingText is shown while a query is in flight.
	GeneratingText = "生成しています..."

	// SummaryFallbackText replaces a summary that decoded to nothing renderable.
	SummaryFallbackText = "要約を表示できませんでした。検索結果を確認してください。"
)

// TextSpan is a run of text with a single emphasis state.
type TextSpan struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// IsLineBreak reports whether the span is the line-break marker.
func (s TextSpan) IsLineBreak() bool {
	return s.Text == "\n" && !s.Emphasized
}

// LineBreak is the span inserted between summary lines.
var LineBreak = TextSpan{Text: "\n"}

// RenderedResult is a normalised result with its snippet decoded for display.
type RenderedResult struct {
	SearchResult
	SnippetSpans []TextSpan `json:"snippet_spans"`
}

// SearchOutcome is everything a renderer needs for one executed query.
type SearchOutcome struct {
	// Query is the trimmed query that was executed.
	Query string `json:"query"`

	// Message is set when the pipeline fell back to a fixed user-facing message.
	Message string `json:"message,omitempty"`

	// Summary is the raw summary text (generated or backend-supplied).
	Summary string `json:"summary,omitempty"`

	// SummarySpans is Summary decoded for display.
	SummarySpans []TextSpan `json:"summary_spans,omitempty"`

	// Recommendations are follow-up queries mined from the summary.
	Recommendations []string `json:"recommendations"`

	// Results are in backend ranking order.
	Results []RenderedResult `json:"results"`

	// TotalSize is the backend's estimate of matching documents.
	TotalSize int64 `json:"total_size"`

	// History is the display history read at the start of the query.
	History []QueryHistoryEntry `json:"history,omitempty"`
}

// HasResults returns true if the outcome carries at least one result.
func (o *SearchOutcome) HasResults() bool {
	return o != nil && len(o.Results) > 0
}
