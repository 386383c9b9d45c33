package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Flags(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
	assert.Contains(t, serveCmd.Long, "GET /search?q=<query>")
}

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestNewMCPServer(t *testing.T) {
	s, _, _ := testServices()
	restore := withServices(s)
	defer restore()

	server, err := newMCPServer()
	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestTUICmd(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.Contains(t, tuiCmd.Long, "Copy the selected link")
}

type countingWatcher struct {
	mockPromptStore
	started chan struct{}
}

type mockPromptStore struct{}

func (mockPromptStore) Load(string) (string, error) { return "", nil }
func (mockPromptStore) Reload()                     {}

func (w *countingWatcher) Watch(ctx context.Context) error {
	close(w.started)
	<-ctx.Done()
	return nil
}

func TestWatchPrompts(t *testing.T) {
	s, _, _ := testServices()
	w := &countingWatcher{started: make(chan struct{})}
	s.Prompts = w
	restore := withServices(s)
	defer restore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchPrompts(ctx)

	<-w.started
}

func TestWatchPrompts_IgnoresPlainStore(t *testing.T) {
	s, _, _ := testServices()
	s.Prompts = mockPromptStore{}
	restore := withServices(s)
	defer restore()

	assert.NotPanics(t, func() { watchPrompts(context.Background()) })
}
