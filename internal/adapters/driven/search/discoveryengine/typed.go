package discoveryengine

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	de "google.golang.org/api/discoveryengine/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/google"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Ensure TypedClient implements the interface.
var _ driven.SearchBackend = (*TypedClient)(nil)

// TypedClient calls the search service through the generated API client.
type TypedClient struct {
	svc           *de.Service
	servingConfig string
	limiter       *google.RateLimiter
}

// NewTypedClient creates a typed search client.
// Extra options are applied last and may override the endpoint or HTTP client.
func NewTypedClient(
	ctx context.Context,
	settings domain.SearchSettings,
	ts oauth2.TokenSource,
	opts ...option.ClientOption,
) (*TypedClient, error) {
	all := []option.ClientOption{option.WithEndpoint(Endpoint(settings.Location))}
	if ts != nil {
		all = append(all, option.WithTokenSource(ts))
	}
	all = append(all, opts...)

	svc, err := de.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create discoveryengine service: %w", err)
	}
	return &TypedClient{
		svc:           svc,
		servingConfig: settings.ServingConfigPath(),
		limiter: google.NewRateLimiterWithConfig(google.RateLimitConfig{
			RequestsPerSecond: settings.RequestsPerSecond,
			BurstSize:         int(settings.RequestsPerSecond),
		}),
	}, nil
}

// Name returns the transport name.
func (c *TypedClient) Name() string { return string(domain.SearchTransportTyped) }

// Search executes one search request.
func (c *TypedClient) Search(ctx context.Context, req domain.SearchRequest) (domain.BackendPayload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	logger.Debug("search[typed]: %q page_size=%d", req.Query, req.PageSize)
	resp, err := c.svc.Projects.Locations.Collections.Engines.ServingConfigs.
		Search(c.servingConfig, typedRequest(req)).
		Context(ctx).
		Do()
	c.limiter.Observe(err)
	if err != nil {
		return nil, unavailable(c.Name(), google.WrapError(err))
	}
	return typedPayload(resp), nil
}

func typedRequest(req domain.SearchRequest) *de.GoogleCloudDiscoveryengineV1SearchRequest {
	out := &de.GoogleCloudDiscoveryengineV1SearchRequest{
		Query:     req.Query,
		PageSize:  int64(req.PageSize),
		PageToken: req.PageToken,
		ContentSearchSpec: &de.GoogleCloudDiscoveryengineV1SearchRequestContentSearchSpec{
			SnippetSpec: &de.GoogleCloudDiscoveryengineV1SearchRequestContentSearchSpecSnippetSpec{
				ReturnSnippet: req.ReturnSnippets,
			},
		},
	}
	if req.ExtractiveMax > 0 {
		out.ContentSearchSpec.ExtractiveContentSpec = &de.GoogleCloudDiscoveryengineV1SearchRequestContentSearchSpecExtractiveContentSpec{
			MaxExtractiveAnswerCount: int64(req.ExtractiveMax),
		}
	}
	if req.SpellCorrection != "" {
		out.SpellCorrectionSpec = &de.GoogleCloudDiscoveryengineV1SearchRequestSpellCorrectionSpec{Mode: req.SpellCorrection}
	}
	if req.QueryExpansion != "" {
		out.QueryExpansionSpec = &de.GoogleCloudDiscoveryengineV1SearchRequestQueryExpansionSpec{Condition: req.QueryExpansion}
	}
	if s := req.Summary; s != nil {
		spec := &de.GoogleCloudDiscoveryengineV1SearchRequestContentSearchSpecSummarySpec{
			SummaryResultCount:           int64(s.ResultCount),
			IncludeCitations:             s.IncludeCitations,
			IgnoreAdversarialQuery:       s.IgnoreAdversarialQuery,
			IgnoreNonSummarySeekingQuery: s.IgnoreNonSummarySeekingQuery,
			LanguageCode:                 s.LanguageCode,
		}
		if s.ModelVersion != "" {
			spec.ModelSpec = &de.GoogleCloudDiscoveryengineV1SearchRequestContentSearchSpecSummarySpecModelSpec{Version: s.ModelVersion}
		}
		if s.Preamble != "" {
			spec.ModelPromptSpec = &de.GoogleCloudDiscoveryengineV1SearchRequestContentSearchSpecSummarySpecModelPromptSpec{Preamble: s.Preamble}
		}
		out.ContentSearchSpec.SummarySpec = spec
	}
	return out
}

func typedPayload(resp *de.GoogleCloudDiscoveryengineV1SearchResponse) *domain.TypedPayload {
	p := &domain.TypedPayload{
		TotalSize:        resp.TotalSize,
		AttributionToken: resp.AttributionToken,
		NextPageToken:    resp.NextPageToken,
		Documents:        make([]domain.TypedDocument, 0, len(resp.Results)),
	}
	if resp.Summary != nil {
		p.SummaryText = resp.Summary.SummaryText
	}
	for _, r := range resp.Results {
		if r == nil {
			p.Documents = append(p.Documents, domain.TypedDocument{})
			continue
		}
		doc := domain.TypedDocument{ID: r.Id}
		if d := r.Document; d != nil {
			if d.Id != "" {
				doc.ID = d.Id
			}
			doc.StructData = bag(doc.ID, "structData", d.StructData)
			doc.DerivedStructData = bag(doc.ID, "derivedStructData", d.DerivedStructData)
		}
		p.Documents = append(p.Documents, doc)
	}
	return p
}

// bag converts a raw JSON object into a Struct. Nil for absent or invalid data.
func bag(id, field string, raw googleapi.RawMessage) *structpb.Struct {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		logger.Warn("search[typed]: document %s: invalid %s: %v", id, field, err)
		return nil
	}
	return s
}
