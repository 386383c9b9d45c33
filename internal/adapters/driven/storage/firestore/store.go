// Package firestore provides a query history store on Cloud Firestore.
//
// Documents use the field names of the existing "Queries" collection so the
// store can share data with other clients of that collection.
package firestore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/google"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "Queries"

// Field names.
const (
	fieldQuery     = "query"
	fieldKey       = "base64dQuery"
	fieldPinned    = "isPickUp"
	fieldUserQuery = "isUserQuery"
	fieldCount     = "count"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// document is the stored shape of an entry.
type document struct {
	Query       string `firestore:"query"`
	EncodedKey  string `firestore:"base64dQuery"`
	IsPinned    bool   `firestore:"isPickUp"`
	IsUserQuery bool   `firestore:"isUserQuery"`
	Count       int    `firestore:"count"`
	CreatedAt   int64  `firestore:"createdAt"`
	UpdatedAt   int64  `firestore:"updatedAt"`
}

func toDocument(e *domain.QueryHistoryEntry) document {
	return document{
		Query:       e.Query,
		EncodedKey:  e.EncodedKey,
		IsPinned:    e.IsPinned,
		IsUserQuery: e.IsUserSubmitted,
		Count:       e.Count,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (d document) entry(id string) domain.QueryHistoryEntry {
	return domain.QueryHistoryEntry{
		ID:              id,
		Query:           d.Query,
		EncodedKey:      d.EncodedKey,
		IsPinned:        d.IsPinned,
		IsUserSubmitted: d.IsUserQuery,
		Count:           d.Count,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// Store is a Firestore-backed driven.HistoryStore.
type Store struct {
	client  *firestore.Client
	coll    *firestore.CollectionRef
	limiter *google.RateLimiter
}

// NewStore connects to Firestore. A nil token source uses Application
// Default Credentials; FIRESTORE_EMULATOR_HOST is honoured by the client.
func NewStore(ctx context.Context, projectID, collection string, ts oauth2.TokenSource) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: FIRESTORE_PROJECT_ID", domain.ErrMissingConfig)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	var opts []option.ClientOption
	if ts != nil {
		opts = append(opts, option.WithTokenSource(ts))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{
		client:  client,
		coll:    client.Collection(collection),
		limiter: google.NewRateLimiter(google.ServiceFirestore),
	}, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// FindByKey returns the entry with the given encoded key.
func (s *Store) FindByKey(ctx context.Context, encodedKey string) (*domain.QueryHistoryEntry, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	iter := s.coll.Where(fieldKey, "==", encodedKey).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, s.wrap("find history entry", err)
	}
	entry, err := decode(snap)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create stores a new entry and assigns its ID.
// The key lookup and the write run in one transaction.
func (s *Store) Create(ctx context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	ref := s.coll.NewDoc()
	if entry.ID != "" {
		ref = s.coll.Doc(entry.ID)
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(s.coll.Where(fieldKey, "==", entry.EncodedKey).Limit(1))
		defer iter.Stop()
		if _, err := iter.Next(); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, iterator.Done) {
			return err
		}
		return tx.Create(ref, toDocument(entry))
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return err
	}
	if err != nil {
		return s.wrap("create history entry", err)
	}
	entry.ID = ref.ID
	return nil
}

// Update writes count, updatedAt and isPinned of an existing entry.
func (s *Store) Update(ctx context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.ID == "" {
		return domain.ErrNotFound
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.coll.Doc(entry.ID).Update(ctx, []firestore.Update{
		{Path: fieldCount, Value: entry.Count},
		{Path: fieldUpdatedAt, Value: entry.UpdatedAt},
		{Path: fieldPinned, Value: entry.IsPinned},
	})
	if err != nil {
		return s.wrap("update history entry", err)
	}
	return nil
}

// ListPinned returns up to limit pinned entries in collection order.
func (s *Store) ListPinned(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.list(ctx, s.coll.Where(fieldPinned, "==", true), limit)
}

// ListRecent returns up to limit entries, most recently updated first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.list(ctx, s.coll.OrderBy(fieldUpdatedAt, firestore.Desc), limit)
}

// ListByCount returns up to limit entries in descending count order.
// Equal counts are ordered most recently updated first.
func (s *Store) ListByCount(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	entries, err := s.list(ctx, byCountQuery(s.coll), limit)
	if err != nil {
		return nil, err
	}
	sortByCount(entries)
	return entries, nil
}

// byCountQuery orders on a single field. Ordering on two fields needs a
// composite index that existing collections do not have.
func byCountQuery(coll *firestore.CollectionRef) firestore.Query {
	return coll.OrderBy(fieldCount, firestore.Desc)
}

func sortByCount(entries []domain.QueryHistoryEntry) {
	slices.SortStableFunc(entries, func(a, b domain.QueryHistoryEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(b.UpdatedAt, a.UpdatedAt)
	})
}

func (s *Store) list(ctx context.Context, q firestore.Query, limit int) ([]domain.QueryHistoryEntry, error) {
	if limit == 0 {
		return nil, nil
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []domain.QueryHistoryEntry
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, s.wrap("list history", err)
		}
		entry, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
}

func (s *Store) wrap(op string, err error) error {
	s.limiter.Observe(err)
	return fmt.Errorf("%s: %w", op, google.WrapError(err))
}

func decode(snap *firestore.DocumentSnapshot) (domain.QueryHistoryEntry, error) {
	var d document
	if err := snap.DataTo(&d); err != nil {
		return domain.QueryHistoryEntry{}, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	return d.entry(snap.Ref.ID), nil
}
