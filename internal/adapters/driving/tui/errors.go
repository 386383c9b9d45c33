package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingHistoryService is returned when the history service is not provided.
var ErrMissingHistoryService = errors.New("tui: history service is required")

// ErrUnsupportedPlatform is returned when no browser launcher is known for the OS.
var ErrUnsupportedPlatform = errors.New("tui: unsupported platform")
