package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is required")

	// ErrNoLinkActions indicates that opening or copying links is unavailable.
	ErrNoLinkActions = errors.New("link actions are not available")
)
