package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"search.display_count": 20}
	store := NewConfigStore(seed)
	seed["search.display_count"] = 5

	assert.Equal(t, 20, store.GetInt("search.display_count"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"s":      "value",
		"i":      int64(7),
		"f":      0.5,
		"fi":     2,
		"b":      true,
		"list":   []any{"a", 1, "b"},
		"strs":   []string{"x"},
		"nested": map[string]any{"k": "v"},
	})

	assert.Equal(t, "value", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 7, store.GetInt("i"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.Equal(t, 0.5, store.GetFloat("f"))
	assert.Equal(t, 2.0, store.GetFloat("fi"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("missing"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
	assert.Equal(t, []string{"x"}, store.GetStringSlice("strs"))
	assert.Nil(t, store.GetStringSlice("nested"))
}

func TestConfigStore_SetSaveLoad(t *testing.T) {
	store := NewConfigStore(nil)

	require.NoError(t, store.Set("history.backend", "memory"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	val, ok := store.Get("history.backend")
	assert.True(t, ok)
	assert.Equal(t, "memory", val)
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore(nil)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("k", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("k")
		}()
	}
	wg.Wait()
}
