package firestore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/protobuf/proto"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// The behaviour suite needs the Firestore emulator.
func TestStore_HistoryBehaviour(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	storetest.RunHistoryStore(t, func(t *testing.T) driven.HistoryStore {
		coll := fmt.Sprintf("queries_test_%d", time.Now().UnixNano())
		store, err := NewStore(context.Background(), "caseforest-test", coll, nil)
		require.NoError(t, err)
		return store
	})
}

func TestNewStore_RequiresProject(t *testing.T) {
	_, err := NewStore(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestDocumentMapping(t *testing.T) {
	e := storetest.Entry("需要予測", 3, 42, true)
	d := toDocument(e)

	assert.Equal(t, "需要予測", d.Query)
	assert.Equal(t, domain.EncodeQueryKey("需要予測"), d.EncodedKey)
	assert.True(t, d.IsPinned)
	assert.False(t, d.IsUserQuery)

	back := d.entry("doc-1")
	e.ID = "doc-1"
	assert.Equal(t, *e, back)
}

func TestByCountQuery_SingleOrder(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"})
	store, err := NewStore(context.Background(), "caseforest-test", "", ts)
	require.NoError(t, err)
	defer store.Close()

	raw, err := byCountQuery(store.coll).Serialize()
	require.NoError(t, err)

	var req firestorepb.RunQueryRequest
	require.NoError(t, proto.Unmarshal(raw, &req))

	orders := req.GetStructuredQuery().GetOrderBy()
	require.Len(t, orders, 1)
	assert.Equal(t, fieldCount, orders[0].GetField().GetFieldPath())
	assert.Equal(t, firestorepb.StructuredQuery_DESCENDING, orders[0].GetDirection())
}

func TestSortByCount_TiesByUpdatedAt(t *testing.T) {
	entries := []domain.QueryHistoryEntry{
		*storetest.Entry("a", 5, 10, false),
		*storetest.Entry("b", 2, 30, false),
		*storetest.Entry("c", 5, 20, false),
		*storetest.Entry("d", 2, 40, false),
	}

	sortByCount(entries)

	assert.Equal(t, []string{"c", "a", "d", "b"}, storetest.Queries(entries))
}
