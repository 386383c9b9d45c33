// Package storetest holds behaviour tests shared by every HistoryStore
// implementation.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// Entry builds a valid entry. Pinned entries are marked as not user-submitted.
func Entry(query string, count int, updatedAt int64, pinned bool) *domain.QueryHistoryEntry {
	return &domain.QueryHistoryEntry{
		Query:           query,
		EncodedKey:      domain.EncodeQueryKey(query),
		IsPinned:        pinned,
		IsUserSubmitted: !pinned,
		Count:           count,
		CreatedAt:       updatedAt,
		UpdatedAt:       updatedAt,
	}
}

// Queries returns the query text of each entry.
func Queries(entries []domain.QueryHistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

// RunHistoryStore runs the shared behaviour suite. newStore must return an
// empty store; the suite closes it.
func RunHistoryStore(t *testing.T, newStore func(t *testing.T) driven.HistoryStore) {
	open := func(t *testing.T) driven.HistoryStore {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { assert.NoError(t, s.Close()) })
		return s
	}

	t.Run("create and find", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		e := Entry("需要予測", 0, 100, false)
		require.NoError(t, store.Create(ctx, e))
		assert.NotEmpty(t, e.ID)

		got, err := store.FindByKey(ctx, domain.EncodeQueryKey("需要予測"))
		require.NoError(t, err)
		assert.Equal(t, *e, *got)

		_, err = store.FindByKey(ctx, domain.EncodeQueryKey("missing"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("create rejects duplicates and invalid entries", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, Entry("a", 0, 1, false)))
		assert.ErrorIs(t, store.Create(ctx, Entry("a", 0, 2, false)), domain.ErrAlreadyExists)

		bad := Entry("b", 0, 1, false)
		bad.EncodedKey = "wrong"
		assert.ErrorIs(t, store.Create(ctx, bad), domain.ErrInvalidInput)

		_, err := store.FindByKey(ctx, domain.EncodeQueryKey("b"))
		assert.ErrorIs(t, err, domain.ErrNotFound, "invalid entry must not be written")
	})

	t.Run("update writes mutable fields only", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		e := Entry("a", 0, 1, false)
		require.NoError(t, store.Create(ctx, e))

		e.Count = 3
		e.UpdatedAt = 50
		e.IsPinned = true
		e.CreatedAt = 999
		require.NoError(t, store.Update(ctx, e))

		got, err := store.FindByKey(ctx, e.EncodedKey)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Count)
		assert.Equal(t, int64(50), got.UpdatedAt)
		assert.True(t, got.IsPinned)
		assert.Equal(t, int64(1), got.CreatedAt)

		missing := Entry("zzz", 0, 1, false)
		missing.ID = "nope"
		assert.ErrorIs(t, store.Update(ctx, missing), domain.ErrNotFound)
	})

	t.Run("listings", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		for _, e := range []*domain.QueryHistoryEntry{
			Entry("old", 9, 10, false),
			Entry("pinned-1", 0, 5, true),
			Entry("new", 2, 30, false),
			Entry("mid", 2, 20, false),
			Entry("pinned-2", 1, 40, true),
		} {
			require.NoError(t, store.Create(ctx, e))
		}

		pinned, err := store.ListPinned(ctx, 1000)
		require.NoError(t, err)
		assert.Equal(t, []string{"pinned-1", "pinned-2"}, Queries(pinned))

		pinned, err = store.ListPinned(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"pinned-1"}, Queries(pinned))

		recent, err := store.ListRecent(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"pinned-2", "new", "mid"}, Queries(recent))

		byCount, err := store.ListByCount(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"old", "new", "mid", "pinned-2", "pinned-1"}, Queries(byCount))

		all, err := store.ListRecent(ctx, -1)
		require.NoError(t, err)
		assert.Len(t, all, 5)

		none, err := store.ListByCount(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("recent tie goes to newest", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, Entry("first", 0, 10, false)))
		require.NoError(t, store.Create(ctx, Entry("second", 0, 10, false)))

		recent, err := store.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"second", "first"}, Queries(recent))
	})

	t.Run("concurrent creates of one key", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = store.Create(ctx, Entry("race", 0, int64(i), false))
			}()
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
			} else {
				assert.ErrorIs(t, err, domain.ErrAlreadyExists)
			}
		}
		assert.Equal(t, 1, created)
	})
}
