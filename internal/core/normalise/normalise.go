// Package normalise maps raw search backend payloads onto the canonical
// result model.
//
// Both payload shapes go through the same per-document extraction:
// documents with structured metadata come from the primary store, all
// others from a shared drive. Blocklisted titles are dropped before the
// display cap is applied, so they never count toward it. A document missing
// a required field is skipped and reported in the envelope; the rest of the
// batch is unaffected.
package normalise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/logger"
)

const untitled = "Untitled"

// Options controls result filtering.
type Options struct {
	// DisplayCap is the maximum number of results returned. Zero or
	// negative means no cap.
	DisplayCap int

	// Blocklist holds exact titles to drop.
	Blocklist []string
}

// errSkip marks a document that cannot be mapped.
var errSkip = errors.New("document skipped")

// rawDocument is one backend document before extraction.
type rawDocument struct {
	id      string
	structD fields // nil when the document has no structured metadata
	derived fields
}

// Normalise converts a backend payload into a response envelope.
func Normalise(payload domain.BackendPayload, opts Options) (*domain.SearchResponseEnvelope, error) {
	switch p := payload.(type) {
	case *domain.TypedPayload:
		if p == nil {
			return nil, fmt.Errorf("%w: nil typed payload", domain.ErrMalformedPayload)
		}
		return normaliseTyped(p, opts), nil
	case domain.FlatPayload:
		return normaliseFlat(p, opts)
	case nil:
		return nil, fmt.Errorf("%w: nil payload", domain.ErrMalformedPayload)
	default:
		return nil, fmt.Errorf("%w: payload %T", domain.ErrUnsupportedType, payload)
	}
}

func normaliseTyped(p *domain.TypedPayload, opts Options) *domain.SearchResponseEnvelope {
	env := &domain.SearchResponseEnvelope{
		TotalSize:        p.TotalSize,
		AttributionToken: p.AttributionToken,
		NextPageToken:    p.NextPageToken,
		SummaryText:      p.SummaryText,
	}
	docs := make([]func() (rawDocument, error), len(p.Documents))
	for i := range p.Documents {
		d := p.Documents[i]
		docs[i] = func() (rawDocument, error) {
			if d.DerivedStructData == nil {
				return rawDocument{id: d.ID}, fmt.Errorf("%w: missing derivedStructData", errSkip)
			}
			raw := rawDocument{id: d.ID, derived: structFields{s: d.DerivedStructData}}
			if d.StructData != nil && len(d.StructData.GetFields()) > 0 {
				raw.structD = structFields{s: d.StructData}
			}
			return raw, nil
		}
	}
	collect(env, docs, opts)
	return env
}

func normaliseFlat(p domain.FlatPayload, opts Options) (*domain.SearchResponseEnvelope, error) {
	top := mapFields(p)
	env := &domain.SearchResponseEnvelope{
		TotalSize:        toInt64(top.value([]string{"totalSize", "total_size"})),
		AttributionToken: top.str("attributionToken", "attribution_token"),
		NextPageToken:    top.str("nextPageToken", "next_page_token"),
		SummaryText:      top.str("summaryText", "summary_text"),
	}
	if summary, ok := asMap(top.value([]string{"summary"})); ok {
		env.SummaryText = summary.str("summaryText", "summary_text")
	}

	rawResults := top.value([]string{"results"})
	if rawResults == nil {
		return env, nil
	}
	results, ok := rawResults.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: results is %T", domain.ErrMalformedPayload, rawResults)
	}

	docs := make([]func() (rawDocument, error), len(results))
	for i := range results {
		item := results[i]
		docs[i] = func() (rawDocument, error) {
			result, ok := asMap(item)
			if !ok {
				return rawDocument{}, fmt.Errorf("%w: result is %T", errSkip, item)
			}
			doc, ok := asMap(result.value([]string{"document"}))
			if !ok {
				return rawDocument{id: result.str("id")}, fmt.Errorf("%w: missing document", errSkip)
			}
			raw := rawDocument{id: doc.str("id")}
			if raw.id == "" {
				raw.id = result.str("id")
			}
			derived, ok := asMap(doc.value([]string{"derivedStructData", "derived_struct_data"}))
			if !ok {
				return raw, fmt.Errorf("%w: missing derivedStructData", errSkip)
			}
			raw.derived = derived
			if sd, ok := asMap(doc.value([]string{"structData", "struct_data"})); ok && len(sd) > 0 {
				raw.structD = sd
			}
			return raw, nil
		}
	}
	collect(env, docs, opts)
	return env, nil
}

// collect extracts documents in backend order until the display cap is reached.
func collect(env *domain.SearchResponseEnvelope, docs []func() (rawDocument, error), opts Options) {
	blocked := make(map[string]struct{}, len(opts.Blocklist))
	for _, title := range opts.Blocklist {
		blocked[title] = struct{}{}
	}

	env.Results = make([]domain.SearchResult, 0, min(len(docs), capOrLen(opts.DisplayCap, len(docs))))
	for i, next := range docs {
		if opts.DisplayCap > 0 && len(env.Results) >= opts.DisplayCap {
			break
		}
		raw, err := next()
		if err != nil {
			logger.Warn("normalise: skipping document %d (%s): %v", i, raw.id, err)
			env.Skipped = append(env.Skipped, domain.SkippedDocument{
				Index:  i,
				ID:     raw.id,
				Reason: strings.TrimPrefix(err.Error(), errSkip.Error()+": "),
			})
			continue
		}
		result := extract(raw)
		if _, ok := blocked[result.Title]; ok {
			logger.Debug("normalise: dropping blocklisted %q", result.Title)
			continue
		}
		env.Results = append(env.Results, result)
	}
}

// extract maps one document onto a SearchResult.
func extract(raw rawDocument) domain.SearchResult {
	d := raw.derived
	link := d.str("link")

	var r domain.SearchResult
	if raw.structD == nil {
		r.SourceKind = domain.SourceKindDrive
		r.EntityName = d.str("title")
		r.Title = r.EntityName
	} else {
		r.SourceKind = domain.SourceKindPrimary
		r.Title = raw.structD.str("title")
		r.EntityName = raw.structD.str("customer_company_name_in_japanese")
		if r.EntityName == "" {
			r.EntityName = raw.structD.str("customer_name")
		}
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = FilenameStem(link)
	}
	if r.Title == "" {
		r.Title = raw.id
	}
	if r.Title == "" {
		r.Title = untitled
	}
	r.Link = BrowsableLink(link)

	if answers := d.objects("extractive_answers", "extractiveAnswers"); len(answers) > 0 {
		r.ExtractiveExcerpt = answers[0].str("content")
	} else if segments := d.objects("extractive_segments", "extractiveSegments"); len(segments) > 0 {
		r.ExtractiveExcerpt = segments[0].str("content")
	}

	if snippets := d.objects("snippets"); len(snippets) > 0 {
		r.Snippet = snippets[0].str("snippet")
		r.SnippetAvailable = snippets[0].str("snippet_status", "snippetStatus") == domain.SnippetStatusSuccess
	}
	return r
}

func capOrLen(displayCap, n int) int {
	if displayCap > 0 {
		return displayCap
	}
	return n
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case interface{ Int64() (int64, error) }:
		i, _ := n.Int64()
		return i
	case string:
		var i int64
		_, _ = fmt.Sscan(n, &i)
		return i
	default:
		return 0
	}
}
