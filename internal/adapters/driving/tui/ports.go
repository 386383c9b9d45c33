// Package tui provides an interactive terminal user interface for caseforest.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

// LinkActions opens and copies result links.
type LinkActions interface {
	// Open launches the link in the system browser.
	Open(link string) error

	// Copy places text on the system clipboard.
	Copy(text string) error
}

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Search runs the search pipeline.
	Search driving.SearchService

	// History feeds the history chips.
	History driving.HistoryService

	// HistoryLimit is the number of history entries requested.
	HistoryLimit int

	// Actions is optional. NewApp installs SystemActions when nil.
	Actions LinkActions

	// FAQLink is opened with ctrl+f. Optional.
	FAQLink string
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
