// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// SearchCompleted carries the pipeline outcome back to the model.
type SearchCompleted struct {
	Outcome *domain.SearchOutcome
	Err     error
}

// HistoryLoaded carries the display history.
type HistoryLoaded struct {
	Entries []domain.QueryHistoryEntry
	Err     error
}

// LinkCopied reports a clipboard copy.
type LinkCopied struct {
	Link string
	Err  error
}

// LinkOpened reports a browser launch.
type LinkOpened struct {
	Link string
	Err  error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// Focus identifies the area receiving keys.
type Focus int

const (
	// FocusInput is the query input.
	FocusInput Focus = iota

	// FocusResults is the result list.
	FocusResults

	// FocusHistory is the history chip row.
	FocusHistory

	// FocusRecommendations is the recommendation chip row.
	FocusRecommendations
)

// String returns the string representation of the focus area.
func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusResults:
		return "results"
	case FocusHistory:
		return "history"
	case FocusRecommendations:
		return "recommendations"
	default:
		return "unknown"
	}
}
