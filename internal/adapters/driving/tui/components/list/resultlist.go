// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// linesPerCard is the rendered height of one result card.
const linesPerCard = 6

// ResultList displays search results as navigable cards.
type ResultList struct {
	results  []domain.RenderedResult
	selected int
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		width:  80,
		height: 20,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keymap.Matches(msg.String(), r.keymap.Up):
			r.MoveUp()
		case keymap.Matches(msg.String(), r.keymap.Down):
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible window of result cards.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render(domain.NoResultsMessage)
	}

	visible := max(r.height/linesPerCard, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	cards := make([]string, 0, end-start+1)
	cards = append(cards, r.styles.Subtitle.Render(fmt.Sprintf("検索結果 (%d)", len(r.results))))
	for i := start; i < end; i++ {
		cards = append(cards, r.renderCard(i, &r.results[i]))
	}
	return strings.Join(cards, "\n")
}

// renderCard formats one result: title, entity, snippet and link.
func (r *ResultList) renderCard(index int, result *domain.RenderedResult) string {
	card := r.styles.Card
	title := r.styles.Title.Render(result.Title)
	if index == r.selected {
		card = r.styles.CardSelected
		title = r.styles.Selected.Render(result.Title)
	}

	lines := []string{title}
	if result.SourceKind == domain.SourceKindDrive && result.EntityName != "" {
		lines = append(lines, r.styles.Muted.Render(result.EntityName))
	}
	lines = append(lines,
		r.styles.Spans(result.SnippetSpans),
		r.styles.Link.Render(result.Link),
	)

	return card.Width(max(r.width-4, 20)).Render(strings.Join(lines, "\n"))
}

// SetResults updates the result list.
func (r *ResultList) SetResults(results []domain.RenderedResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.RenderedResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.RenderedResult {
	if len(r.results) == 0 || r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
