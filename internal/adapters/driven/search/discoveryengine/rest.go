package discoveryengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/google"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Ensure RESTClient implements the interface.
var _ driven.SearchBackend = (*RESTClient)(nil)

// restAPIVersion is the API surface the REST transport posts to.
const restAPIVersion = "v1alpha"

const defaultRESTTimeout = 30 * time.Second

// RESTClient posts search requests as JSON with a bearer token.
type RESTClient struct {
	baseURL       string
	servingConfig string
	tokens        driven.TokenProvider
	client        *http.Client
	limiter       *google.RateLimiter
}

// RESTOption configures a RESTClient.
type RESTOption func(*RESTClient)

// WithBaseURL overrides the API root derived from the location.
func WithBaseURL(url string) RESTOption {
	return func(c *RESTClient) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) RESTOption {
	return func(c *RESTClient) { c.client = client }
}

// NewRESTClient creates a REST search client.
func NewRESTClient(settings domain.SearchSettings, tokens driven.TokenProvider, opts ...RESTOption) *RESTClient {
	c := &RESTClient{
		baseURL:       strings.TrimSuffix(Endpoint(settings.Location), "/"),
		servingConfig: settings.ServingConfigPath(),
		tokens:        tokens,
		client:        &http.Client{Timeout: defaultRESTTimeout},
		limiter: google.NewRateLimiterWithConfig(google.RateLimitConfig{
			RequestsPerSecond: settings.RequestsPerSecond,
			BurstSize:         int(settings.RequestsPerSecond),
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the transport name.
func (c *RESTClient) Name() string { return string(domain.SearchTransportREST) }

// URL returns the search endpoint.
func (c *RESTClient) URL() string {
	return fmt.Sprintf("%s/%s/%s:search", c.baseURL, restAPIVersion, c.servingConfig)
}

// Search executes one search request.
func (c *RESTClient) Search(ctx context.Context, req domain.SearchRequest) (domain.BackendPayload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, unavailable(c.Name(), err)
	}

	body, err := json.Marshal(restRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug("search[rest]: %q page_size=%d", req.Query, req.PageSize)
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, unavailable(c.Name(), err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		c.limiter.Observe(err)
		return nil, unavailable(c.Name(), google.WrapError(err))
	}

	var payload domain.FlatPayload
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", domain.ErrMalformedPayload, err)
	}
	if payload == nil {
		payload = domain.FlatPayload{}
	}
	return payload, nil
}

type restBody struct {
	Query               string             `json:"query"`
	PageSize            int                `json:"pageSize,omitempty"`
	PageToken           string             `json:"pageToken,omitempty"`
	SpellCorrectionSpec *restSpellSpec     `json:"spellCorrectionSpec,omitempty"`
	QueryExpansionSpec  *restExpansionSpec `json:"queryExpansionSpec,omitempty"`
	ContentSearchSpec   restContentSpec    `json:"contentSearchSpec"`
}

type restSpellSpec struct {
	Mode string `json:"mode"`
}

type restExpansionSpec struct {
	Condition string `json:"condition"`
}

type restContentSpec struct {
	SnippetSpec           restSnippetSpec     `json:"snippetSpec"`
	ExtractiveContentSpec *restExtractiveSpec `json:"extractiveContentSpec,omitempty"`
	SummarySpec           *restSummarySpec    `json:"summarySpec,omitempty"`
}

type restSnippetSpec struct {
	ReturnSnippet bool `json:"returnSnippet"`
}

type restExtractiveSpec struct {
	MaxExtractiveAnswerCount int `json:"maxExtractiveAnswerCount"`
}

type restSummarySpec struct {
	SummaryResultCount           int             `json:"summaryResultCount"`
	IncludeCitations             bool            `json:"includeCitations"`
	IgnoreAdversarialQuery       bool            `json:"ignoreAdversarialQuery"`
	IgnoreNonSummarySeekingQuery bool            `json:"ignoreNonSummarySeekingQuery"`
	LanguageCode                 string          `json:"languageCode,omitempty"`
	ModelSpec                    *restModelSpec  `json:"modelSpec,omitempty"`
	ModelPromptSpec              *restPromptSpec `json:"modelPromptSpec,omitempty"`
}

type restModelSpec struct {
	Version string `json:"version"`
}

type restPromptSpec struct {
	Preamble string `json:"preamble"`
}

func restRequest(req domain.SearchRequest) restBody {
	out := restBody{
		Query:     req.Query,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
		ContentSearchSpec: restContentSpec{
			SnippetSpec: restSnippetSpec{ReturnSnippet: req.ReturnSnippets},
		},
	}
	if req.SpellCorrection != "" {
		out.SpellCorrectionSpec = &restSpellSpec{Mode: req.SpellCorrection}
	}
	if req.QueryExpansion != "" {
		out.QueryExpansionSpec = &restExpansionSpec{Condition: req.QueryExpansion}
	}
	if req.ExtractiveMax > 0 {
		out.ContentSearchSpec.ExtractiveContentSpec = &restExtractiveSpec{MaxExtractiveAnswerCount: req.ExtractiveMax}
	}
	if s := req.Summary; s != nil {
		spec := &restSummarySpec{
			SummaryResultCount:           s.ResultCount,
			IncludeCitations:             s.IncludeCitations,
			IgnoreAdversarialQuery:       s.IgnoreAdversarialQuery,
			IgnoreNonSummarySeekingQuery: s.IgnoreNonSummarySeekingQuery,
			LanguageCode:                 s.LanguageCode,
		}
		if s.ModelVersion != "" {
			spec.ModelSpec = &restModelSpec{Version: s.ModelVersion}
		}
		if s.Preamble != "" {
			spec.ModelPromptSpec = &restPromptSpec{Preamble: s.Preamble}
		}
		out.ContentSearchSpec.SummarySpec = spec
	}
	return out
}
