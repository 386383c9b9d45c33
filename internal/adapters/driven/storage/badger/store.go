// Package badger provides an embedded key-value query history store.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

const (
	sequenceBandwidth = 100
	maxTxnAttempts    = 3
)

// Store is a BadgerDB-backed driven.HistoryStore.
//
// Entries live under a sequence-ordered primary key; a secondary index maps
// the encoded query key to the primary key.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// record is the stored value.
type record struct {
	Seq uint64 `json:"seq"`
	domain.QueryHistoryEntry
}

// badgerLogger adapts the application logger to badger.Logger.
type badgerLogger struct{}

var _ badger.Logger = badgerLogger{}

func (badgerLogger) Errorf(msg string, items ...any)   { logger.Error("badger: "+msg, items...) }
func (badgerLogger) Warningf(msg string, items ...any) { logger.Warn("badger: "+msg, items...) }
func (badgerLogger) Infof(msg string, items ...any)    { logger.Debug("badger: "+msg, items...) }
func (badgerLogger) Debugf(msg string, items ...any)   { logger.Debug("badger: "+msg, items...) }

// Open opens a store in dir, creating the directory if needed.
// An empty dir opens an in-memory store.
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(dir)
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		} else if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = badgerLogger{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	seq, err := db.GetSequence([]byte(entrySeq), sequenceBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open sequence: %w", err)
	}
	return &Store{db: db, seq: seq}, nil
}

// Close releases the sequence and closes the database.
func (s *Store) Close() error {
	return errors.Join(s.seq.Release(), s.db.Close())
}

// FindByKey returns the entry with the given encoded key.
func (s *Store) FindByKey(_ context.Context, encodedKey string) (*domain.QueryHistoryEntry, error) {
	var rec *record
	err := s.db.View(func(tx *badger.Txn) error {
		var err error
		rec, err = findByKey(tx, encodedKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &rec.QueryHistoryEntry, nil
}

// Create stores a new entry and assigns its ID.
func (s *Store) Create(_ context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	seq, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	rec := record{Seq: seq, QueryHistoryEntry: *entry}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	err = s.update(func(tx *badger.Txn) error {
		_, err := tx.Get(makeIndexKey(entry.EncodedKey))
		if err == nil {
			return domain.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return put(tx, &rec)
	})
	if err != nil {
		return err
	}
	entry.ID = rec.ID
	return nil
}

// Update writes count, updatedAt and isPinned of an existing entry.
func (s *Store) Update(_ context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return s.update(func(tx *badger.Txn) error {
		rec, err := findByKey(tx, entry.EncodedKey)
		if err != nil {
			return err
		}
		if rec.ID != entry.ID {
			return domain.ErrNotFound
		}
		rec.Count = entry.Count
		rec.UpdatedAt = entry.UpdatedAt
		rec.IsPinned = entry.IsPinned
		return put(tx, rec)
	})
}

// ListPinned returns up to limit pinned entries in creation order.
func (s *Store) ListPinned(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	var out []domain.QueryHistoryEntry
	err := s.scan(func(rec *record) bool {
		if limit >= 0 && len(out) >= limit {
			return false
		}
		if rec.IsPinned {
			out = append(out, rec.QueryHistoryEntry)
		}
		return true
	})
	return out, err
}

// ListRecent returns up to limit entries, most recently updated first.
// Ties go to the entry created last.
func (s *Store) ListRecent(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.sorted(limit, func(a, b domain.QueryHistoryEntry) int {
		return cmpDesc(a.UpdatedAt, b.UpdatedAt)
	})
}

// ListByCount returns up to limit entries in descending count order.
// Ties go to the most recently updated entry.
func (s *Store) ListByCount(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.sorted(limit, func(a, b domain.QueryHistoryEntry) int {
		if c := cmpDesc(a.Count, b.Count); c != 0 {
			return c
		}
		return cmpDesc(a.UpdatedAt, b.UpdatedAt)
	})
}

func (s *Store) sorted(limit int, cmp func(a, b domain.QueryHistoryEntry) int) ([]domain.QueryHistoryEntry, error) {
	var all []domain.QueryHistoryEntry
	if err := s.scan(func(rec *record) bool {
		all = append(all, rec.QueryHistoryEntry)
		return true
	}); err != nil {
		return nil, err
	}
	slices.Reverse(all)
	slices.SortStableFunc(all, cmp)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// scan visits entries in creation order until fn returns false.
func (s *Store) scan(fn func(*record) bool) error {
	return s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rec record
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode history entry: %w", err)
			}
			if !fn(&rec) {
				return nil
			}
		}
		return nil
	})
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *Store) update(fn func(tx *badger.Txn) error) error {
	var err error
	for range maxTxnAttempts {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func findByKey(tx *badger.Txn, encodedKey string) (*record, error) {
	idx, err := tx.Get(makeIndexKey(encodedKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	primary, err := idx.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(primary)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec record
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
		return nil, fmt.Errorf("decode history entry: %w", err)
	}
	return &rec, nil
}

// put writes the entry and its index in the same transaction.
func put(tx *badger.Txn, rec *record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	primary := makeEntryKey(rec.Seq)
	if err := tx.Set(primary, data); err != nil {
		return err
	}
	return tx.Set(makeIndexKey(rec.EncodedKey), primary)
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
