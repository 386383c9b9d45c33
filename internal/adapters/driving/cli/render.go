package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// renderer prints outcomes. Emphasized spans are bold on a terminal and
// plain otherwise.
type renderer struct {
	styled bool
	bold   lipgloss.Style
	title  lipgloss.Style
	link   lipgloss.Style
	dim    lipgloss.Style
}

func newRenderer(w io.Writer, plain bool) renderer {
	return renderer{
		styled: !plain && isTerminal(w),
		bold:   lipgloss.NewStyle().Bold(true),
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		link:   lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Underline(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// spans renders a span sequence. Plain output marks emphasis with **.
func (r renderer) spans(spans []domain.TextSpan) string {
	var b strings.Builder
	for _, span := range spans {
		switch {
		case !span.Emphasized:
			b.WriteString(span.Text)
		case r.styled:
			b.WriteString(r.bold.Render(span.Text))
		default:
			b.WriteString("**" + span.Text + "**")
		}
	}
	return b.String()
}

func (r renderer) outcome(w io.Writer, o *domain.SearchOutcome, limit int) {
	fmt.Fprintf(w, "%s %s\n\n", r.style(r.dim, "Query:"), o.Query)

	if o.Message != "" {
		fmt.Fprintln(w, o.Message)
		return
	}

	if len(o.SummarySpans) > 0 {
		fmt.Fprintln(w, r.style(r.title, "Summary"))
		fmt.Fprintln(w, r.spans(o.SummarySpans))
		fmt.Fprintln(w)
	}

	if len(o.Recommendations) > 0 {
		fmt.Fprintf(w, "%s %s\n\n", r.style(r.dim, "Try:"), strings.Join(o.Recommendations, " / "))
	}

	results := o.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	fmt.Fprintf(w, "%s (%d of about %d)\n\n", r.style(r.title, "Results"), len(results), o.TotalSize)
	for i := range results {
		res := results[i]
		fmt.Fprintf(w, "  [%d] %s\n", i+1, r.style(r.bold, res.Title))
		if res.EntityName != "" && res.EntityName != res.Title {
			fmt.Fprintf(w, "      %s\n", res.EntityName)
		}
		fmt.Fprintf(w, "      %s\n", r.style(r.link, res.Link))
		fmt.Fprintf(w, "      %s\n\n", r.spans(res.SnippetSpans))
	}
}

func (r renderer) history(w io.Writer, entries []domain.QueryHistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No queries yet.")
		return
	}
	for i, e := range entries {
		pin := " "
		if e.IsPinned {
			pin = "*"
		}
		fmt.Fprintf(w, "%s %2d. %s %s\n", pin, i+1, e.Query, r.style(r.dim, fmt.Sprintf("(%d)", e.Count)))
	}
}
