package domain

import (
	"encoding/base64"
	"fmt"
)

// QueryHistoryEntry is one executed (or pinned) search query.
type QueryHistoryEntry struct {
	// ID is the store-assigned identifier.
	ID string `json:"id"`

	// Query is the raw query text.
	Query string `json:"query"`

	// EncodedKey is EncodeQueryKey(Query); lookups go through it.
	EncodedKey string `json:"encoded_key"`

	// IsPinned entries are always listed first.
	IsPinned bool `json:"is_pinned"`

	// IsUserSubmitted is true when the entry was created by a search.
	IsUserSubmitted bool `json:"is_user_submitted"`

	// Count is the number of repeat executions after the first one.
	Count int `json:"count"`

	// CreatedAt and UpdatedAt are unix timestamps in seconds.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Validate reports whether the entry is safe to persist.
// Stores refuse entries that fail validation so a partial record is never written.
func (e *QueryHistoryEntry) Validate() error {
	if e.Query == "" {
		return fmt.Errorf("%w: empty query", ErrInvalidInput)
	}
	if e.EncodedKey != EncodeQueryKey(e.Query) {
		return fmt.Errorf("%w: encoded key does not match query", ErrInvalidInput)
	}
	if e.Count < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidInput)
	}
	return nil
}

// EncodeQueryKey returns the lookup key for a query: standard base64 of its UTF-8 bytes.
func EncodeQueryKey(query string) string {
	return base64.StdEncoding.EncodeToString([]byte(query))
}

// DecodeQueryKey reverses EncodeQueryKey.
func DecodeQueryKey(key string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return string(b), nil
}
