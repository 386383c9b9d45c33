package driving

import (
	"context"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// SearchService runs the search pipeline for external actors.
type SearchService interface {
	// Run executes one query for a session.
	// Backend and parse failures are reported through the outcome's Message,
	// never as an error. Errors are returned only for an empty query
	// (domain.ErrInvalidInput) or a busy session (domain.ErrSessionBusy).
	Run(ctx context.Context, session *Session, query string) (*domain.SearchOutcome, error)
}
