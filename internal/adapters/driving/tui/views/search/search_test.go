package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

type mockSearchService struct {
	outcome *domain.SearchOutcome
	err     error
	queries []string
}

func (m *mockSearchService) Run(_ context.Context, session *driving.Session, query string) (*domain.SearchOutcome, error) {
	m.queries = append(m.queries, query)
	if session == nil {
		return nil, errors.New("nil session")
	}
	return m.outcome, m.err
}

type mockHistoryService struct {
	entries []domain.QueryHistoryEntry
	err     error
	limits  []int
}

func (m *mockHistoryService) RecordQuery(context.Context, string) error { return nil }

func (m *mockHistoryService) ListForDisplay(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	m.limits = append(m.limits, limit)
	return m.entries, m.err
}

func (m *mockHistoryService) ListByFrequency(context.Context, int) ([]domain.QueryHistoryEntry, error) {
	return nil, nil
}

func (m *mockHistoryService) Pin(context.Context, string) error   { return nil }
func (m *mockHistoryService) Unpin(context.Context, string) error { return nil }

type mockActions struct {
	opened []string
	copied []string
	err    error
}

func (m *mockActions) Open(link string) error {
	m.opened = append(m.opened, link)
	return m.err
}

func (m *mockActions) Copy(text string) error {
	m.copied = append(m.copied, text)
	return m.err
}

// collect runs cmd and every batched command, returning the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if got, ok := m.(T); ok {
			return got, true
		}
	}
	var zero T
	return zero, false
}

func sampleOutcome() *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Query:           "DX 事例",
		Summary:         "**A社** の事例",
		SummarySpans:    []domain.TextSpan{{Text: "A社", Emphasized: true}, {Text: " の事例"}},
		Recommendations: []string{"ERP 導入", "AI 活用"},
		Results: []domain.RenderedResult{
			{
				SearchResult: domain.SearchResult{Title: "A社 導入事例", Link: "https://example.com/a"},
				SnippetSpans: []domain.TextSpan{{Text: "snippet"}},
			},
			{
				SearchResult: domain.SearchResult{Title: "B社 導入事例", Link: "https://example.com/b"},
				SnippetSpans: []domain.TextSpan{{Text: "snippet"}},
			},
		},
		TotalSize: 12,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestView(deps Deps) *View {
	v := NewView(nil, nil, deps)
	v.SetDimensions(120, 60)
	return v
}

// runQuery submits the input and feeds the completion back into the view.
func runQuery(t *testing.T, v *View) []tea.Msg {
	t.Helper()
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Busy())

	done, ok := find[messages.SearchCompleted](collect(cmd))
	require.True(t, ok)
	_, next := v.Update(done)
	return collect(next)
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil, Deps{})
	assert.Equal(t, messages.FocusInput, v.Focus())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.Equal(t, defaultHistorySize, v.deps.HistoryLimit)
}

func TestView_InitLoadsHistory(t *testing.T) {
	hist := &mockHistoryService{entries: []domain.QueryHistoryEntry{{Query: "a"}, {Query: "b"}}}
	v := newTestView(Deps{History: hist, HistoryLimit: 8})

	loaded, ok := find[messages.HistoryLoaded](collect(v.Init()))
	require.True(t, ok)
	v.Update(loaded)

	assert.Equal(t, []int{8}, hist.limits)
	assert.Equal(t, []string{"a", "b"}, v.HistoryChips())
	assert.Contains(t, v.View(), "検索履歴")
}

func TestView_HistoryChipsCappedAtSix(t *testing.T) {
	v := newTestView(Deps{})
	entries := make([]domain.QueryHistoryEntry, 9)
	for i := range entries {
		entries[i] = domain.QueryHistoryEntry{Query: string(rune('a' + i))}
	}
	v.Update(messages.HistoryLoaded{Entries: entries})
	assert.Len(t, v.HistoryChips(), 6)
}

func TestView_SubmitRunsSearch(t *testing.T) {
	svc := &mockSearchService{outcome: sampleOutcome()}
	hist := &mockHistoryService{entries: []domain.QueryHistoryEntry{{Query: "DX 事例"}}}
	v := newTestView(Deps{Search: svc, History: hist})
	v.SetQuery("  DX 事例  ")

	after := runQuery(t, v)

	assert.Equal(t, []string{"DX 事例"}, svc.queries)
	assert.False(t, v.Busy())
	assert.Equal(t, messages.FocusResults, v.Focus())
	require.NotNil(t, v.Outcome())

	_, ok := find[messages.HistoryLoaded](after)
	assert.True(t, ok, "history is reloaded after a search")

	view := v.View()
	assert.Contains(t, view, "検索クエリ: DX 事例")
	assert.Contains(t, view, "A社")
	assert.Contains(t, view, "ERP 導入")
	assert.Contains(t, view, "B社 導入事例")
}

func TestView_EmptyQueryIgnored(t *testing.T) {
	svc := &mockSearchService{outcome: sampleOutcome()}
	v := newTestView(Deps{Search: svc})
	v.SetQuery("   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Busy())
}

func TestView_SubmitWhileBusyIgnored(t *testing.T) {
	svc := &mockSearchService{outcome: sampleOutcome()}
	v := newTestView(Deps{Search: svc})
	v.SetQuery("first")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	_, again := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	// typing is ignored while busy
	v.Update(keyRunes("x"))
	assert.Equal(t, "first", v.Query())
}

func TestView_MessageOutcome(t *testing.T) {
	svc := &mockSearchService{outcome: &domain.SearchOutcome{Query: "zzz", Message: domain.NoResultsMessage}}
	v := newTestView(Deps{Search: svc})
	v.SetQuery("zzz")

	runQuery(t, v)

	assert.Equal(t, messages.FocusInput, v.Focus())
	assert.Contains(t, v.View(), domain.NoResultsMessage)
}

func TestView_SearchError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "busy", err: domain.ErrSessionBusy, message: domain.GeneratingText},
		{name: "invalid", err: domain.ErrInvalidInput, message: domain.ErrInvalidInput.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestView(Deps{Search: &mockSearchService{err: tt.err}})
			v.SetQuery("q")

			runQuery(t, v)

			assert.ErrorIs(t, v.Err(), tt.err)
			assert.Equal(t, tt.message, v.StatusMessage())
			assert.False(t, v.Busy())
		})
	}
}

func TestView_NoSearchService(t *testing.T) {
	v := newTestView(Deps{})
	v.SetQuery("q")

	runQuery(t, v)

	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_ResultActions(t *testing.T) {
	actions := &mockActions{}
	v := newTestView(Deps{Search: &mockSearchService{outcome: sampleOutcome()}, Actions: actions})
	v.SetQuery("DX")
	runQuery(t, v)

	v.Update(keyRunes("j"))
	require.NotNil(t, v.SelectedResult())
	assert.Equal(t, "https://example.com/b", v.SelectedResult().Link)

	_, cmd := v.Update(keyRunes("c"))
	copied, ok := find[messages.LinkCopied](collect(cmd))
	require.True(t, ok)
	v.Update(copied)
	assert.Equal(t, []string{"https://example.com/b"}, actions.copied)
	assert.Equal(t, "リンクをコピーしました", v.StatusMessage())

	_, cmd = v.Update(keyRunes("o"))
	opened, ok := find[messages.LinkOpened](collect(cmd))
	require.True(t, ok)
	v.Update(opened)
	assert.Equal(t, []string{"https://example.com/b"}, actions.opened)
}

func TestView_ResultActionsUnavailable(t *testing.T) {
	v := newTestView(Deps{Search: &mockSearchService{outcome: sampleOutcome()}})
	v.SetQuery("DX")
	runQuery(t, v)

	_, cmd := v.Update(keyRunes("o"))
	opened, ok := find[messages.LinkOpened](collect(cmd))
	require.True(t, ok)
	assert.ErrorIs(t, opened.Err, ErrNoLinkActions)

	v.Update(opened)
	assert.Equal(t, ErrNoLinkActions.Error(), v.StatusMessage())
}

func TestView_FAQKeyOpensLink(t *testing.T) {
	actions := &mockActions{}
	v := newTestView(Deps{Search: &mockSearchService{}, Actions: actions, FAQLink: "https://example.com/faq.pdf"})
	v.SetQuery("typing")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	opened, ok := find[messages.LinkOpened](collect(cmd))
	require.True(t, ok)
	v.Update(opened)

	assert.Equal(t, []string{"https://example.com/faq.pdf"}, actions.opened)
	assert.Equal(t, "ブラウザで開きました", v.StatusMessage())
	assert.Equal(t, "typing", v.Query(), "the key must not reach the input")
}

func TestView_FAQKeyWithoutLink(t *testing.T) {
	actions := &mockActions{}
	v := newTestView(Deps{Search: &mockSearchService{}, Actions: actions})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Nil(t, cmd)
	assert.Empty(t, actions.opened)
}

func TestView_RecommendationChipSubmits(t *testing.T) {
	svc := &mockSearchService{outcome: sampleOutcome()}
	v := newTestView(Deps{Search: svc})
	v.SetQuery("DX")
	runQuery(t, v)

	// results -> recommendations
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.FocusRecommendations, v.Focus())

	v.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, "AI 活用", v.Query())
	assert.Equal(t, messages.FocusInput, v.Focus())
	done, ok := find[messages.SearchCompleted](collect(cmd))
	require.True(t, ok)
	v.Update(done)
	assert.Equal(t, []string{"DX", "AI 活用"}, svc.queries)
}

func TestView_FocusSkipsEmptyAreas(t *testing.T) {
	v := newTestView(Deps{})

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.FocusInput, v.Focus(), "nothing else to focus")

	v.Update(messages.HistoryLoaded{Entries: []domain.QueryHistoryEntry{{Query: "a"}}})
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.FocusHistory, v.Focus())

	v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, messages.FocusInput, v.Focus())

	v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, messages.FocusHistory, v.Focus())

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.FocusInput, v.Focus())
}

func TestView_HistoryLoadError(t *testing.T) {
	v := newTestView(Deps{})
	v.Update(messages.HistoryLoaded{Err: errors.New("disk gone")})
	assert.Equal(t, "disk gone", v.StatusMessage())
	assert.Empty(t, v.HistoryChips())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newTestView(Deps{})
	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})
	assert.EqualError(t, v.Err(), "boom")
	assert.Contains(t, v.View(), "Error: boom")
}
