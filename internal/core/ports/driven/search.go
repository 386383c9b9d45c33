package driven

import (
	"context"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// SearchBackend sends a query to the managed search service.
// Implementations return the raw payload; normalisation happens in core.
//
// Implementations may include:
//   - Typed API client (returns *domain.TypedPayload)
//   - REST endpoint with bearer token (returns domain.FlatPayload)
type SearchBackend interface {
	// Search executes one search request.
	Search(ctx context.Context, req domain.SearchRequest) (domain.BackendPayload, error)

	// Name identifies the transport for logging.
	Name() string
}
