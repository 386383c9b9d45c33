package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
// Entries are kept in creation order, which is the order ListPinned uses.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.QueryHistoryEntry
	byKey   map[string]int
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{byKey: make(map[string]int)}
}

// FindByKey returns the entry with the given encoded key.
func (s *HistoryStore) FindByKey(_ context.Context, encodedKey string) (*domain.QueryHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byKey[encodedKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry := s.entries[i]
	return &entry, nil
}

// Create stores a new entry and assigns its ID.
func (s *HistoryStore) Create(_ context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[entry.EncodedKey]; ok {
		return domain.ErrAlreadyExists
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.byKey[entry.EncodedKey] = len(s.entries)
	s.entries = append(s.entries, *entry)
	return nil
}

// Update writes count, updatedAt and isPinned of an existing entry.
func (s *HistoryStore) Update(_ context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byKey[entry.EncodedKey]
	if !ok || s.entries[i].ID != entry.ID {
		return domain.ErrNotFound
	}
	s.entries[i].Count = entry.Count
	s.entries[i].UpdatedAt = entry.UpdatedAt
	s.entries[i].IsPinned = entry.IsPinned
	return nil
}

// ListPinned returns up to limit pinned entries in creation order.
func (s *HistoryStore) ListPinned(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QueryHistoryEntry
	for _, e := range s.entries {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if e.IsPinned {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns up to limit entries, most recently updated first.
// Ties go to the entry created last.
func (s *HistoryStore) ListRecent(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.sorted(limit, func(a, b domain.QueryHistoryEntry) int {
		return cmpDesc(a.UpdatedAt, b.UpdatedAt)
	}), nil
}

// ListByCount returns up to limit entries in descending count order.
// Ties go to the most recently updated entry.
func (s *HistoryStore) ListByCount(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.sorted(limit, func(a, b domain.QueryHistoryEntry) int {
		if c := cmpDesc(a.Count, b.Count); c != 0 {
			return c
		}
		return cmpDesc(a.UpdatedAt, b.UpdatedAt)
	}), nil
}

// Close is a no-op.
func (s *HistoryStore) Close() error { return nil }

func (s *HistoryStore) sorted(limit int, cmp func(a, b domain.QueryHistoryEntry) int) []domain.QueryHistoryEntry {
	s.mu.RLock()
	all := slices.Clone(s.entries)
	s.mu.RUnlock()

	slices.Reverse(all)
	slices.SortStableFunc(all, cmp)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

func cmpDesc[T int | int64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
