package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/core/prompt"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".caseforest", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptSummary)
	require.NoError(t, err)

	for _, f := range []string{"summary.txt", "backend_preamble.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_DefaultSummaryPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	p, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)

	assert.Contains(t, p, prompt.QueryPlaceholder)
	assert.Contains(t, p, `{"recommendations":`)
	assert.True(t, strings.HasSuffix(p, prompt.Delimiter), "summary prompt must end with the opening delimiter")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"), []byte("  custom {{query}}\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	p, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)
	assert.Equal(t, "custom {{query}}", p)
}

func TestPromptStore_Load_UnknownName(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent")
	assert.Error(t, err)
}

func TestPromptStore_Load_FallsBackWhenFileRemoved(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptBackendPreamble)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "backend_preamble.txt")))
	store.Reload()

	p, err := store.Load(driven.PromptBackendPreamble)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptBackendPreamble], p)
}

func TestPromptStore_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	p, _ := store.Load(driven.PromptSummary)
	assert.Equal(t, "v1", p)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0600))
	p, _ = store.Load(driven.PromptSummary)
	assert.Equal(t, "v1", p, "cached until reload")

	store.Reload()
	p, _ = store.Load(driven.PromptSummary)
	assert.Equal(t, "v2", p)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load(driven.PromptSummary)
			assert.NoError(t, err)
			assert.NotEmpty(t, p)
		}()
	}
	wg.Wait()
}

func TestPromptStore_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.txt")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	p, _ := store.Load(driven.PromptSummary)
	require.Equal(t, "before", p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("after"), 0600)
		p, _ := store.Load(driven.PromptSummary)
		return p == "after"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
