// Package chips renders selectable query chips laid out in fixed-width rows.
package chips

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui/styles"
)

// Row holds selectable chips. At most Max chips are shown, PerRow per line.
type Row struct {
	label    string
	items    []string
	selected int
	focused  bool
	max      int
	perRow   int
	styles   *styles.Styles
	keymap   *keymap.KeyMap
}

// NewRow creates a chip row showing up to maxItems chips, perRow per line.
func NewRow(s *styles.Styles, label string, maxItems, perRow int) *Row {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Row{
		label:  label,
		max:    maxItems,
		perRow: max(perRow, 1),
		styles: s,
		keymap: keymap.DefaultKeyMap(),
	}
}

// SetItems replaces the chips. Items beyond the row maximum are dropped.
func (r *Row) SetItems(items []string) {
	if r.max > 0 && len(items) > r.max {
		items = items[:r.max]
	}
	r.items = items
	r.selected = 0
}

// Items returns the visible chips.
func (r *Row) Items() []string {
	return r.items
}

// Len returns the number of visible chips.
func (r *Row) Len() int {
	return len(r.items)
}

// Focus marks the row as receiving keys.
func (r *Row) Focus() {
	r.focused = true
}

// Blur clears focus.
func (r *Row) Blur() {
	r.focused = false
}

// Focused reports whether the row has focus.
func (r *Row) Focused() bool {
	return r.focused
}

// Selected returns the selected chip text, or "" when empty.
func (r *Row) Selected() string {
	if r.selected < 0 || r.selected >= len(r.items) {
		return ""
	}
	return r.items[r.selected]
}

// SelectedIndex returns the index of the selected chip.
func (r *Row) SelectedIndex() int {
	return r.selected
}

// Update moves the selection. Left/right step one chip, up/down one line.
func (r *Row) Update(msg tea.Msg) (*Row, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(r.items) == 0 {
		return r, nil
	}
	k := key.String()
	switch {
	case keymap.Matches(k, r.keymap.Left):
		r.move(-1)
	case keymap.Matches(k, r.keymap.Right):
		r.move(1)
	case keymap.Matches(k, r.keymap.Up):
		r.move(-r.perRow)
	case keymap.Matches(k, r.keymap.Down):
		r.move(r.perRow)
	}
	return r, nil
}

func (r *Row) move(delta int) {
	next := r.selected + delta
	if next < 0 || next >= len(r.items) {
		return
	}
	r.selected = next
}

// View renders the label followed by the chip lines.
func (r *Row) View() string {
	if len(r.items) == 0 {
		return ""
	}

	lines := []string{r.styles.Subtitle.Render(r.label)}
	for start := 0; start < len(r.items); start += r.perRow {
		end := min(start+r.perRow, len(r.items))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			style := r.styles.Chip
			if r.focused && i == r.selected {
				style = r.styles.ChipSelected
			}
			cells = append(cells, style.Render(r.items[i]))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}
