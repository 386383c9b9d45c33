package mcp

import (
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

// PromptReader reads prompt templates by name.
type PromptReader interface {
	Load(name string) (string, error)
}

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs the search pipeline.
	Search driving.SearchService

	// History reads the query history ledger.
	History driving.HistoryService

	// Prompts exposes prompt templates as resources. Optional.
	Prompts PromptReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.History == nil {
		return ErrMissingHistoryService
	}
	return nil
}
