package driven

import (
	"context"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// HistoryStore persists query history entries.
//
// The store offers equality lookup, point create, point update and ordered
// scans. It does not provide atomic increments; callers perform a
// read-then-write upsert and accept lost updates under concurrent writers.
// Implementations must never persist a partially written entry.
type HistoryStore interface {
	// FindByKey returns the entry with the given encoded key.
	// Returns domain.ErrNotFound when there is none.
	FindByKey(ctx context.Context, encodedKey string) (*domain.QueryHistoryEntry, error)

	// Create stores a new entry and assigns its ID.
	Create(ctx context.Context, entry *domain.QueryHistoryEntry) error

	// Update writes count, updatedAt and isPinned of an existing entry.
	Update(ctx context.Context, entry *domain.QueryHistoryEntry) error

	// ListPinned returns up to limit pinned entries in store order.
	ListPinned(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error)

	// ListRecent returns up to limit entries, most recently updated first.
	ListRecent(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error)

	// ListByCount returns up to limit entries in descending count order.
	ListByCount(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error)

	// Close releases resources.
	Close() error
}
