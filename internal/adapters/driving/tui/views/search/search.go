// Package search provides the search view for the TUI: history chips,
// the query input, the summary card, recommendation chips and result cards.
package search

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/components/chips"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

const (
	historyChips       = 6
	chipsPerRow        = 3
	defaultHistorySize = 10
)

// LinkActions opens and copies result links.
type LinkActions interface {
	Open(link string) error
	Copy(text string) error
}

// Deps holds the services the view drives.
type Deps struct {
	Search  driving.SearchService
	History driving.HistoryService

	// HistoryLimit is the number of entries requested for the history chips.
	HistoryLimit int

	// Actions is optional. Without it open and copy report ErrNoLinkActions.
	Actions LinkActions

	// FAQLink is opened by the FAQ key. Empty disables the key.
	FAQLink string
}

// View represents the search view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	history   *chips.Row
	recs      *chips.Row
	statusbar *status.Bar

	deps    Deps
	session *driving.Session
	ctx     context.Context

	outcome *domain.SearchOutcome
	focus   messages.Focus
	busy    bool
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, deps Deps) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = defaultHistorySize
	}

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		list:      list.NewResultList(s),
		history:   chips.NewRow(s, "検索履歴", historyChips, chipsPerRow),
		recs:      chips.NewRow(s, "おすすめの検索", 0, chipsPerRow),
		statusbar: status.NewBar(s, km),
		deps:      deps,
		session:   driving.NewSession(),
		ctx:       context.Background(),
		focus:     messages.FocusInput,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor blink and loads the history chips.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadHistory())
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		return v, v.handleSearchCompleted(msg)

	case messages.HistoryLoaded:
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.history.SetItems(queries(msg.Entries))
		return v, nil

	case messages.LinkCopied:
		v.reportAction(msg.Err, "リンクをコピーしました")
		return v, nil

	case messages.LinkOpened:
		v.reportAction(msg.Err, "ブラウザで開きました")
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

// handleKeyMsg routes keys by focus area.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.NextFocus):
		v.cycleFocus(1)
		return v, nil
	case keymap.Matches(k, v.keymap.PrevFocus):
		v.cycleFocus(-1)
		return v, nil
	case keymap.Matches(k, v.keymap.Back):
		v.setFocus(messages.FocusInput)
		return v, nil
	case keymap.Matches(k, v.keymap.FAQ):
		return v, v.openLink(v.deps.FAQLink)
	}

	switch v.focus {
	case messages.FocusInput:
		if keymap.Matches(k, v.keymap.Search) {
			return v, v.submit(v.input.Value())
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd

	case messages.FocusHistory, messages.FocusRecommendations:
		row := v.history
		if v.focus == messages.FocusRecommendations {
			row = v.recs
		}
		if keymap.Matches(k, v.keymap.Search) {
			query := row.Selected()
			if query == "" {
				return v, nil
			}
			v.input.SetValue(query)
			return v, v.submit(query)
		}
		row.Update(msg)
		return v, nil

	case messages.FocusResults:
		switch {
		case keymap.Matches(k, v.keymap.Open):
			return v, v.openSelected()
		case keymap.Matches(k, v.keymap.Copy):
			return v, v.copySelected()
		}
		v.list.Update(msg)
		return v, nil
	}

	return v, nil
}

// submit starts a query unless one is already in flight.
func (v *View) submit(raw string) tea.Cmd {
	query := strings.TrimSpace(raw)
	if query == "" || v.busy {
		return nil
	}
	v.busy = true
	v.err = nil
	v.input.SetDisabled(true)
	v.setFocus(messages.FocusInput)
	return tea.Batch(v.statusbar.StartSearching(), v.performSearch(query))
}

// performSearch runs the pipeline for the view's session.
func (v *View) performSearch(query string) tea.Cmd {
	svc := v.deps.Search
	ctx := v.ctx
	session := v.session
	return func() tea.Msg {
		if svc == nil {
			return messages.SearchCompleted{Err: ErrNoSearchService}
		}
		outcome, err := svc.Run(ctx, session, query)
		return messages.SearchCompleted{Outcome: outcome, Err: err}
	}
}

// loadHistory reads the display history for the chips.
func (v *View) loadHistory() tea.Cmd {
	svc := v.deps.History
	if svc == nil {
		return nil
	}
	ctx := v.ctx
	limit := v.deps.HistoryLimit
	return func() tea.Msg {
		entries, err := svc.ListForDisplay(ctx, limit)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

// handleSearchCompleted stores the outcome and reloads history.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) tea.Cmd {
	v.busy = false
	v.input.SetDisabled(false)

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		if errors.Is(msg.Err, domain.ErrSessionBusy) {
			v.statusbar.SetMessage(domain.GeneratingText)
		} else {
			v.statusbar.SetMessage(msg.Err.Error())
		}
		return nil
	}

	v.err = nil
	v.outcome = msg.Outcome
	if msg.Outcome == nil {
		v.outcome = &domain.SearchOutcome{Message: domain.NoResultsMessage}
	}
	v.list.SetResults(v.outcome.Results)
	v.recs.SetItems(v.outcome.Recommendations)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(v.outcome.Results), v.outcome.TotalSize)

	if v.outcome.HasResults() {
		v.setFocus(messages.FocusResults)
	}
	return v.loadHistory()
}

func (v *View) openSelected() tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil {
		return nil
	}
	return v.openLink(result.Link)
}

func (v *View) openLink(link string) tea.Cmd {
	if link == "" {
		return nil
	}
	actions := v.deps.Actions
	return func() tea.Msg {
		if actions == nil {
			return messages.LinkOpened{Link: link, Err: ErrNoLinkActions}
		}
		return messages.LinkOpened{Link: link, Err: actions.Open(link)}
	}
}

func (v *View) copySelected() tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil {
		return nil
	}
	actions := v.deps.Actions
	link := result.Link
	return func() tea.Msg {
		if actions == nil {
			return messages.LinkCopied{Link: link, Err: ErrNoLinkActions}
		}
		return messages.LinkCopied{Link: link, Err: actions.Copy(link)}
	}
}

func (v *View) reportAction(err error, ok string) {
	if err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
		return
	}
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage(ok)
}

// focusOrder lists the areas tab cycles through.
var focusOrder = []messages.Focus{
	messages.FocusInput,
	messages.FocusResults,
	messages.FocusRecommendations,
	messages.FocusHistory,
}

// cycleFocus moves to the next non-empty area in the given direction.
func (v *View) cycleFocus(dir int) {
	idx := 0
	for i, f := range focusOrder {
		if f == v.focus {
			idx = i
		}
	}
	n := len(focusOrder)
	for range n {
		idx = (idx + dir + n) % n
		if v.focusable(focusOrder[idx]) {
			v.setFocus(focusOrder[idx])
			return
		}
	}
}

func (v *View) focusable(f messages.Focus) bool {
	switch f {
	case messages.FocusResults:
		return !v.list.IsEmpty()
	case messages.FocusRecommendations:
		return v.recs.Len() > 0
	case messages.FocusHistory:
		return v.history.Len() > 0
	default:
		return true
	}
}

func (v *View) setFocus(f messages.Focus) {
	v.focus = f
	v.statusbar.SetFocus(f)
	v.history.Blur()
	v.recs.Blur()
	v.input.Blur()
	switch f {
	case messages.FocusInput:
		v.input.Focus()
	case messages.FocusHistory:
		v.history.Focus()
	case messages.FocusRecommendations:
		v.recs.Focus()
	case messages.FocusResults:
	}
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("事例の森"), "")

	if h := v.history.View(); h != "" {
		sections = append(sections, h, "")
	}
	sections = append(sections, v.input.View(), "")

	if v.err != nil && !errors.Is(v.err, domain.ErrSessionBusy) {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.outcome != nil {
		sections = append(sections, v.renderSummary(), "")
		if r := v.recs.View(); r != "" {
			sections = append(sections, r, "")
		}
		if v.outcome.HasResults() {
			sections = append(sections, v.list.View(), "")
		}
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSummary renders the summary card, or the fallback message.
func (v *View) renderSummary() string {
	card := v.styles.Card.Width(max(v.width-4, 20))
	if v.outcome.Message != "" {
		return card.Render(v.styles.Warning.Render(v.outcome.Message))
	}
	title := v.styles.Subtitle.Render("検索クエリ: " + v.outcome.Query)
	return card.Render(title + "\n\n" + v.styles.Spans(v.outcome.SummarySpans))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, max(height-20, 6))
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current input value.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input value.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Outcome returns the last completed outcome.
func (v *View) Outcome() *domain.SearchOutcome {
	return v.outcome
}

// Focus returns the focused area.
func (v *View) Focus() messages.Focus {
	return v.focus
}

// Busy reports whether a query is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// HistoryChips returns the visible history queries.
func (v *View) HistoryChips() []string {
	return v.history.Items()
}

// SelectedResult returns the highlighted result card.
func (v *View) SelectedResult() *domain.RenderedResult {
	return v.list.SelectedResult()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

func queries(entries []domain.QueryHistoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Query)
	}
	return out
}
