package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultScanLimit caps how many entries a listing reads from the store.
const DefaultScanLimit = 1000

// HistoryService is the query history ledger.
//
// RecordQuery is a read-then-write upsert without atomic increments.
// Sequential calls count exactly; concurrent calls for the same query may
// lose an increment but never leave a partial entry behind.
type HistoryService struct {
	store     driven.HistoryStore
	scanLimit int
	now       func() time.Time
}

// NewHistoryService creates a ledger over the given store.
// A non-positive scanLimit uses DefaultScanLimit.
func NewHistoryService(store driven.HistoryStore, scanLimit int) *HistoryService {
	if scanLimit <= 0 {
		scanLimit = DefaultScanLimit
	}
	return &HistoryService{store: store, scanLimit: scanLimit, now: time.Now}
}

// RecordQuery counts one execution of a query.
// The first execution creates the entry with count 0; each repeat adds one.
func (s *HistoryService) RecordQuery(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("record query: %w: empty query", domain.ErrInvalidInput)
	}
	key := domain.EncodeQueryKey(query)
	now := s.now().Unix()

	existing, err := s.store.FindByKey(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		entry := &domain.QueryHistoryEntry{
			Query:           query,
			EncodedKey:      key,
			IsUserSubmitted: true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		err = s.store.Create(ctx, entry)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			if err != nil {
				return fmt.Errorf("record query: create: %w", err)
			}
			logger.Debug("history: created entry for %q", query)
			return nil
		}
		// Another writer created it first; count this execution as a repeat.
		existing, err = s.store.FindByKey(ctx, key)
		if err != nil {
			return fmt.Errorf("record query: find after conflict: %w", err)
		}
	case err != nil:
		return fmt.Errorf("record query: find: %w", err)
	}

	existing.Count++
	existing.UpdatedAt = now
	if err := s.store.Update(ctx, existing); err != nil {
		return fmt.Errorf("record query: update: %w", err)
	}
	logger.Debug("history: %q count=%d", query, existing.Count)
	return nil
}

// ListForDisplay returns pinned entries first, then the most recently
// updated other entries, skipping any whose query repeats a pinned one.
// At most limit entries are returned; when more entries are pinned than fit,
// the pinned list itself is truncated.
func (s *HistoryService) ListForDisplay(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	if limit <= 0 {
		return []domain.QueryHistoryEntry{}, nil
	}

	pinned, err := s.store.ListPinned(ctx, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("list pinned: %w", err)
	}
	if len(pinned) >= limit {
		return pinned[:limit], nil
	}

	out := make([]domain.QueryHistoryEntry, 0, limit)
	out = append(out, pinned...)
	seen := make(map[string]struct{}, len(pinned))
	for _, e := range pinned {
		seen[e.Query] = struct{}{}
	}

	recent, err := s.store.ListRecent(ctx, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	for _, e := range recent {
		if len(out) >= limit {
			break
		}
		if e.IsPinned {
			continue
		}
		if _, dup := seen[e.Query]; dup {
			continue
		}
		seen[e.Query] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

// ListByFrequency returns up to limit entries, highest count first.
func (s *HistoryService) ListByFrequency(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	if limit <= 0 {
		return []domain.QueryHistoryEntry{}, nil
	}
	entries, err := s.store.ListByCount(ctx, min(limit, s.scanLimit))
	if err != nil {
		return nil, fmt.Errorf("list by count: %w", err)
	}
	slices.SortStableFunc(entries, func(a, b domain.QueryHistoryEntry) int {
		return b.Count - a.Count
	})
	return entries, nil
}

// Pin marks a query to always be listed first.
// Queries that were never searched are created with count 0.
func (s *HistoryService) Pin(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("pin: %w: empty query", domain.ErrInvalidInput)
	}
	key := domain.EncodeQueryKey(query)
	existing, err := s.store.FindByKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		now := s.now().Unix()
		err = s.store.Create(ctx, &domain.QueryHistoryEntry{
			Query:      query,
			EncodedKey: key,
			IsPinned:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("pin: create: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("pin: find: %w", err)
	}
	return s.setPinned(ctx, existing, true)
}

// Unpin clears the pinned mark of a query.
func (s *HistoryService) Unpin(ctx context.Context, query string) error {
	existing, err := s.store.FindByKey(ctx, domain.EncodeQueryKey(query))
	if err != nil {
		return fmt.Errorf("unpin %q: %w", query, err)
	}
	return s.setPinned(ctx, existing, false)
}

func (s *HistoryService) setPinned(ctx context.Context, entry *domain.QueryHistoryEntry, pinned bool) error {
	if entry.IsPinned == pinned {
		return nil
	}
	entry.IsPinned = pinned
	if err := s.store.Update(ctx, entry); err != nil {
		return fmt.Errorf("set pinned: %w", err)
	}
	return nil
}
