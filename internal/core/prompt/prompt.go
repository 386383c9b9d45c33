// Package prompt builds the instruction text sent to the generative-text
// backend.
package prompt

import (
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// Delimiter encloses the cited result lines at the end of a prompt.
const Delimiter = "====="

// QueryPlaceholder is replaced by the user's query in a template.
const QueryPlaceholder = "{{query}}"

// WithQuery fills the query into a template. Templates without a
// placeholder get the query prepended on its own line.
func WithQuery(template, query string) string {
	if strings.Contains(template, QueryPlaceholder) {
		return strings.ReplaceAll(template, QueryPlaceholder, query)
	}
	return "検索クエリ: " + query + "\n\n" + template
}

// Assemble appends one line per cited result and the closing delimiter to
// the base instructions. At most maxCited results are cited. Each line holds
// the result's display name and link separated by a tab.
func Assemble(base string, results []domain.SearchResult, maxCited int) string {
	var b strings.Builder
	b.WriteString(base)
	if base != "" && !strings.HasSuffix(base, "\n") {
		b.WriteByte('\n')
	}
	for i, r := range results {
		if i >= maxCited {
			break
		}
		b.WriteString(oneLine(r.DisplayName()))
		b.WriteByte('\t')
		b.WriteString(oneLine(r.Link))
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	return b.String()
}

// oneLine keeps a value from breaking the one-result-per-line layout.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
