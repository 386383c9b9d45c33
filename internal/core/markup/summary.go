package markup

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/recommend"
)

const (
	lineBreakTag  = "<br>"
	boldDelimiter = "**"
	bulletPrefix  = "- "
	bulletMark    = "・"
)

var (
	// A full stop, whitespace, then a bullet dash: the bullet was
	// separated from the sentence it continues.
	splitBullet = regexp.MustCompile(`。[\s\x{3000}]+?-`)

	// Citation brackets the generator emits with only commas inside.
	emptyCitation = regexp.MustCompile(`\(,+\)`)

	// A full stop directly followed by a bullet dash starts a new line.
	joinedBullet = regexp.MustCompile(`。-`)

	// An ASCII period ends a sentence only when whitespace follows it,
	// so "v2.-beta" stays intact.
	periodBullet = regexp.MustCompile(`\.[\s\x{3000}]+-`)
)

// DecodeSummary converts generated summary text into spans.
//
// Bullets separated from the preceding sentence are rejoined and then moved
// onto their own line, line-break tags and comma-only citation brackets are
// stripped, "- " line prefixes become a display bullet, and **bold** runs
// are emphasized. A line-break span follows every source line. The
// recommendation trailer line is replaced by a single line break. Trailing
// line breaks and empty spans are trimmed; if nothing remains a single empty
// span is returned.
func DecodeSummary(raw string) Spans {
	text := splitBullet.ReplaceAllString(raw, "。-")
	text = strings.ReplaceAll(text, lineBreakTag, "")
	text = emptyCitation.ReplaceAllString(text, "")
	text = joinedBullet.ReplaceAllString(text, "。\n-")
	text = periodBullet.ReplaceAllString(text, ".\n-")

	var spans Spans
	for _, line := range strings.Split(text, "\n") {
		if recommend.IsTrailerLine(line) {
			spans = append(spans, domain.LineBreak)
			continue
		}
		if line == "" {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(line, bulletPrefix) {
			// trimmed is "-" when the line held only the prefix.
			trimmed = bulletMark + strings.TrimPrefix(strings.TrimPrefix(trimmed, "-"), " ")
		}
		spans = append(spans, alternate(strings.Split(trimmed, boldDelimiter))...)
		spans = append(spans, domain.LineBreak)
	}

	spans = trimTrailing(spans)
	if len(spans) == 0 {
		return Spans{{}}
	}
	return spans
}

// DecodeSummaryOrFallback decodes a summary and substitutes the fixed
// fallback sentence when it has nothing renderable.
func DecodeSummaryOrFallback(raw string) Spans {
	spans := DecodeSummary(raw)
	if !spans.HasContent() {
		return Spans{{Text: domain.SummaryFallbackText}}
	}
	return spans
}

func trimTrailing(spans Spans) Spans {
	for len(spans) > 0 {
		last := spans[len(spans)-1]
		if last.Text != "" && !last.IsLineBreak() {
			break
		}
		spans = spans[:len(spans)-1]
	}
	return spans
}
