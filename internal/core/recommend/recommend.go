// Package recommend extracts follow-up query suggestions from generated
// summaries.
//
// A summary is free text optionally followed by one trailer line holding a
// single-line JSON object:
//
//	{"recommendations": ["query 1", "query 2", "query 3"]}
//
// Only the first line starting with the trailer marker is considered.
package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// TrailerMarker is the exact prefix of a trailer line.
const TrailerMarker = `{"recommendations":`

// Trailer is the structured block appended to a summary.
type Trailer struct {
	Recommendations []string `json:"recommendations"`
}

// IsTrailerLine reports whether a summary line starts the trailer.
func IsTrailerLine(line string) bool {
	return strings.HasPrefix(line, TrailerMarker)
}

// SplitTrailer separates a summary into the text before the trailer and the
// trailer line itself. ok is false when the summary has no trailer, in which
// case body is the whole summary.
func SplitTrailer(summary string) (body, trailer string, ok bool) {
	lines := strings.Split(summary, "\n")
	for i, line := range lines {
		if IsTrailerLine(line) {
			return strings.Join(lines[:i], "\n"), line, true
		}
	}
	return summary, "", false
}

// Parse decodes the trailer of a summary.
// It returns domain.ErrNoTrailer when there is none and
// domain.ErrMalformedPayload when the trailer line is not a single valid
// object with a string list.
func Parse(summary string) (Trailer, error) {
	_, line, ok := SplitTrailer(summary)
	if !ok {
		return Trailer{}, domain.ErrNoTrailer
	}

	dec := json.NewDecoder(strings.NewReader(line))
	var t Trailer
	if err := dec.Decode(&t); err != nil {
		return Trailer{}, fmt.Errorf("%w: recommendation trailer: %w", domain.ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Trailer{}, fmt.Errorf("%w: recommendation trailer: trailing data", domain.ErrMalformedPayload)
	}
	return t, nil
}

// Extract returns the recommended follow-up queries in generator order.
// Failures are logged and yield an empty slice.
func Extract(summary string) []string {
	t, err := Parse(summary)
	switch {
	case errors.Is(err, domain.ErrNoTrailer):
		logger.Debug("summary has no recommendation trailer")
		return []string{}
	case err != nil:
		logger.Warn("recommendations: %v", err)
		return []string{}
	}
	if t.Recommendations == nil {
		return []string{}
	}
	return t.Recommendations
}
