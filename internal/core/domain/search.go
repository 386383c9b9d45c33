package domain

import "strings"

// SourceKind classifies where a search result document is stored.
type SourceKind string

// Known source kinds.
const (
	// SourceKindPrimary is a document from the primary structured store
	// (structured metadata plus a storage object link).
	SourceKindPrimary SourceKind = "PRIMARY_STORE"

	// SourceKindDrive is a document from a shared drive without structured metadata.
	SourceKindDrive SourceKind = "DRIVE_STORE"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	return k == SourceKindPrimary || k == SourceKindDrive
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// SnippetStatusSuccess is the availability value the search backend reports
// for a usable snippet.
const SnippetStatusSuccess = "SUCCESS"

// PlaceholderLink is used when a document carries no link.
const PlaceholderLink = "https://www.google.com/"

// SearchResult is one normalised search hit.
type SearchResult struct {
	// Title is never empty after normalisation.
	Title string `json:"title"`

	// Link is a browsable URL.
	Link string `json:"link"`

	// EntityName is the customer or company the document is about.
	EntityName string `json:"entity_name,omitempty"`

	// ExtractiveExcerpt is a longer backend-selected passage.
	ExtractiveExcerpt string `json:"extractive_excerpt,omitempty"`

	// Snippet is a short excerpt that may contain inline emphasis tags.
	Snippet string `json:"snippet"`

	// SnippetAvailable is true when the backend reported the snippet as usable.
	SnippetAvailable bool `json:"snippet_available"`

	// SourceKind classifies the document store.
	SourceKind SourceKind `json:"source_kind"`
}

// DisplayName returns the name used when citing the result.
// Drive documents are cited by entity name, everything else by title.
func (r SearchResult) DisplayName() string {
	if r.SourceKind == SourceKindDrive && strings.TrimSpace(r.EntityName) != "" {
		return r.EntityName
	}
	return r.Title
}

// SearchResponseEnvelope is the normalised search response.
type SearchResponseEnvelope struct {
	// TotalSize is the backend's estimate of matching documents.
	TotalSize int64 `json:"total_size"`

	// AttributionToken is an opaque backend analytics token.
	AttributionToken string `json:"attribution_token,omitempty"`

	// NextPageToken fetches the next page when non-empty.
	NextPageToken string `json:"next_page_token,omitempty"`

	// SummaryText is the backend-generated summary, if requested.
	SummaryText string `json:"summary_text,omitempty"`

	// Results are in backend ranking order.
	Results []SearchResult `json:"results"`

	// Skipped lists documents dropped because required fields were missing.
	Skipped []SkippedDocument `json:"skipped,omitempty"`
}

// Empty returns true if the envelope carries no results.
func (e *SearchResponseEnvelope) Empty() bool {
	return e == nil || len(e.Results) == 0
}

// SkippedDocument records a document the normaliser could not map.
type SkippedDocument struct {
	// Index is the position in the backend payload.
	Index int `json:"index"`

	// ID is the backend document ID, when known.
	ID string `json:"id,omitempty"`

	// Reason describes the missing or malformed field.
	Reason string `json:"reason"`
}

// SearchRequest is the request sent to the search backend.
type SearchRequest struct {
	Query           string
	PageSize        int
	PageToken       string
	ReturnSnippets  bool
	ExtractiveMax   int
	Summary         *SummarySpec
	SpellCorrection string
	QueryExpansion  string
}

// SummarySpec asks the backend for a generated summary.
type SummarySpec struct {
	ResultCount                  int
	IncludeCitations             bool
	IgnoreAdversarialQuery       bool
	IgnoreNonSummarySeekingQuery bool
	LanguageCode                 string
	ModelVersion                 string
	Preamble                     string
}

// Spell correction and query expansion modes.
const (
	ModeAuto = "AUTO"
)
