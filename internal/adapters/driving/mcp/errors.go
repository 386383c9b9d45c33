// Package mcp provides an MCP (Model Context Protocol) server adapter for caseforest.
// It lets AI assistants run case searches and read the query history.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingHistoryService is returned when the history service is not provided.
var ErrMissingHistoryService = errors.New("mcp: history service is required")
