package driving

import (
	"context"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// HistoryService is the query history ledger.
type HistoryService interface {
	// RecordQuery counts one execution of a query, creating its entry on
	// first use.
	RecordQuery(ctx context.Context, query string) error

	// ListForDisplay returns pinned entries first, then the most recently
	// used other queries without repeating a pinned query. The total never
	// exceeds limit.
	ListForDisplay(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error)

	// ListByFrequency returns the most used queries, highest count first.
	ListByFrequency(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error)

	// Pin marks a query to always be listed first, creating it if needed.
	Pin(ctx context.Context, query string) error

	// Unpin clears the pinned mark. Returns domain.ErrNotFound for unknown queries.
	Unpin(ctx context.Context, query string) error
}
