package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/caseforest/internal/core/domain"
)

func TestBar_Defaults(t *testing.T) {
	b := NewBar(nil, nil)
	assert.Equal(t, StateReady, b.State())
	assert.Equal(t, 80, b.Width())
	assert.Nil(t, b.Init())
	assert.Contains(t, b.View(), "Ready")
}

func TestBar_Searching(t *testing.T) {
	b := NewBar(nil, nil)
	cmd := b.StartSearching()

	assert.NotNil(t, cmd)
	assert.Equal(t, StateSearching, b.State())
	assert.Contains(t, b.View(), domain.GeneratingText)
}

func TestBar_SpinnerTicksOnlyWhileSearching(t *testing.T) {
	b := NewBar(nil, nil)
	_, cmd := b.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)

	_, cmd = b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestBar_ResultsAndMessages(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	b.SetResultCount(3, 42)
	b.SetState(StateResults)
	assert.Contains(t, b.View(), "3 / 42")

	b.SetMessage("copied")
	assert.Contains(t, b.View(), "copied")

	b.SetState(StateError)
	b.SetMessage("boom")
	assert.Contains(t, b.View(), "Error: boom")

	b.Clear()
	assert.Equal(t, StateReady, b.State())
	assert.Zero(t, b.ResultCount())
	assert.Empty(t, b.Message())
}

func TestBar_HintsFollowFocus(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(160)

	b.SetFocus(messages.FocusResults)
	assert.Contains(t, b.View(), "copy link")

	b.SetFocus(messages.FocusHistory)
	assert.Contains(t, b.View(), "back")

	b.SetFocus(messages.FocusInput)
	assert.Contains(t, b.View(), "search")
}
