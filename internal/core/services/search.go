package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/markup"
	"github.com/custodia-labs/caseforest/internal/core/normalise"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
	"github.com/custodia-labs/caseforest/internal/core/prompt"
	"github.com/custodia-labs/caseforest/internal/core/recommend"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Backend summary request defaults.
const (
	backendSummaryResultCount = 5
	backendSummaryLanguage    = "ja"
	backendSummaryModel       = "stable"
	extractiveAnswerCount     = 1
)

// SearchService runs one query through search, normalisation, optional
// generation, decoding and the history ledger.
type SearchService struct {
	backend   driven.SearchBackend
	history   driving.HistoryService
	prompts   driven.PromptStore
	generator driven.TextGenerator
	genOpts   driven.GenerateOptions
	settings  domain.SearchSettings

	historyLimit int
}

// NewSearchService creates a new search pipeline.
// The generator is optional; set it with SetGenerator.
func NewSearchService(
	backend driven.SearchBackend,
	history driving.HistoryService,
	prompts driven.PromptStore,
	settings domain.SearchSettings,
) *SearchService {
	return &SearchService{
		backend:      backend,
		history:      history,
		prompts:      prompts,
		settings:     settings,
		historyLimit: 10,
	}
}

// SetGenerator enables summary generation.
func (s *SearchService) SetGenerator(g driven.TextGenerator, opts driven.GenerateOptions) {
	s.generator = g
	s.genOpts = opts
}

// SetHistoryLimit sets how many history entries are returned with an outcome.
func (s *SearchService) SetHistoryLimit(n int) {
	s.historyLimit = n
}

// Run executes one query for a session.
func (s *SearchService) Run(ctx context.Context, session *driving.Session, query string) (*domain.SearchOutcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("run: %w: empty query", domain.ErrInvalidInput)
	}
	if !session.Begin() {
		return nil, domain.ErrSessionBusy
	}
	defer session.End()

	logger.Section("Search Pipeline")
	logger.Debug("Query: %q (backend=%s)", query, s.backend.Name())

	outcome := &domain.SearchOutcome{
		Query:           query,
		Recommendations: []string{},
		Results:         []domain.RenderedResult{},
	}

	history, err := s.history.ListForDisplay(ctx, s.historyLimit)
	if err != nil {
		logger.Warn("history: %v", err)
	}
	outcome.History = history

	payload, err := s.backend.Search(ctx, s.request(query))
	if err != nil {
		logger.Warn("search backend: %v", err)
		outcome.Message = domain.NoResultsMessage
		return outcome, nil
	}

	env, err := normalise.Normalise(payload, normalise.Options{
		DisplayCap: s.settings.DisplayCount,
		Blocklist:  s.settings.Blocklist,
	})
	if err != nil {
		logger.Warn("normalise: %v", err)
		outcome.Message = domain.NoResultsMessage
		return outcome, nil
	}
	logger.Debug("Results: %d (total=%d, skipped=%d)", len(env.Results), env.TotalSize, len(env.Skipped))
	if env.Empty() {
		outcome.Message = domain.NoResultsMessage
		return outcome, nil
	}
	outcome.TotalSize = env.TotalSize

	outcome.Summary = s.summarise(ctx, query, env)
	if outcome.Summary != "" {
		outcome.SummarySpans = markup.DecodeSummaryOrFallback(outcome.Summary)
	}
	outcome.Recommendations = recommend.Extract(outcome.Summary)

	for _, r := range env.Results {
		outcome.Results = append(outcome.Results, domain.RenderedResult{
			SearchResult: r,
			SnippetSpans: markup.DecodeSnippet(r.Snippet, r.SnippetAvailable),
		})
	}

	if err := s.history.RecordQuery(ctx, query); err != nil {
		logger.Warn("history: %v", err)
	}
	logger.Info("Query %q: %d results, %d recommendations", query, len(outcome.Results), len(outcome.Recommendations))
	return outcome, nil
}

// summarise returns generated text, or the backend summary when generation
// is disabled or fails.
func (s *SearchService) summarise(ctx context.Context, query string, env *domain.SearchResponseEnvelope) string {
	if s.generator == nil {
		return env.SummaryText
	}
	template, err := s.prompts.Load(driven.PromptSummary)
	if err != nil {
		logger.Warn("prompt %s: %v", driven.PromptSummary, err)
		return env.SummaryText
	}
	text := prompt.Assemble(prompt.WithQuery(template, query), env.Results, s.settings.MaxCited)
	logger.Debug("Prompt: %d bytes, model=%s", len(text), s.generator.ModelName())

	summary, err := s.generator.Generate(ctx, text, s.genOpts)
	if err != nil {
		logger.Warn("generate: %v", err)
		return env.SummaryText
	}
	return summary
}

func (s *SearchService) request(query string) domain.SearchRequest {
	req := domain.SearchRequest{
		Query:           query,
		PageSize:        s.settings.RetrieveCount,
		ReturnSnippets:  true,
		ExtractiveMax:   extractiveAnswerCount,
		SpellCorrection: domain.ModeAuto,
		QueryExpansion:  domain.ModeAuto,
	}
	if !s.settings.RequestSummary {
		return req
	}
	preamble, err := s.prompts.Load(driven.PromptBackendPreamble)
	if err != nil {
		logger.Warn("prompt %s: %v", driven.PromptBackendPreamble, err)
	}
	req.Summary = &domain.SummarySpec{
		ResultCount:                  backendSummaryResultCount,
		IncludeCitations:             true,
		IgnoreAdversarialQuery:       true,
		IgnoreNonSummarySeekingQuery: true,
		LanguageCode:                 backendSummaryLanguage,
		ModelVersion:                 backendSummaryModel,
		Preamble:                     preamble,
	}
	return req
}
