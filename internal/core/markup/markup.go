// Package markup turns snippet and summary text carrying inline emphasis
// markup into renderer-agnostic span sequences.
//
// Decoding never fails. Input that yields nothing renderable is reported
// through Spans.HasContent so callers can substitute a fallback sentence.
package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

// Spans is an ordered sequence of text spans.
type Spans []domain.TextSpan

// HasContent reports whether any span carries visible text.
func (s Spans) HasContent() bool {
	for _, span := range s {
		if strings.TrimSpace(span.Text) != "" {
			return true
		}
	}
	return false
}

// Text concatenates every span, ignoring emphasis.
func (s Spans) Text() string {
	var b strings.Builder
	for _, span := range s {
		b.WriteString(span.Text)
	}
	return b.String()
}

// emphasisTag matches both the opening and closing snippet emphasis tag.
var emphasisTag = regexp.MustCompile(`</?b>`)

const nbsp = "\u00a0"

// Decode converts snippet text into spans.
//
// HTML entities are unescaped and non-breaking spaces removed before the
// text is split on emphasis tags. Runs at even positions are plain and runs
// at odd positions are emphasized, so an unmatched trailing tag degrades to
// a plain trailing run. Empty runs are kept so the split position stays
// meaningful; an empty input yields a single empty span.
func Decode(raw string) Spans {
	cleaned := strings.ReplaceAll(html.UnescapeString(raw), nbsp, "")
	return alternate(emphasisTag.Split(cleaned, -1))
}

// DecodeSnippet decodes a result snippet, substituting the fixed
// no-overview text when the backend reported the snippet as unavailable
// or when it decodes to nothing renderable.
func DecodeSnippet(raw string, available bool) Spans {
	if !available {
		return Spans{{Text: domain.NoOverviewText}}
	}
	spans := Decode(raw)
	if !spans.HasContent() {
		return Spans{{Text: domain.NoOverviewText}}
	}
	return spans
}

func alternate(runs []string) Spans {
	spans := make(Spans, 0, len(runs))
	for i, run := range runs {
		spans = append(spans, domain.TextSpan{Text: run, Emphasized: i%2 == 1})
	}
	return spans
}
