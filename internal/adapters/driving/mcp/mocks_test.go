package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	outcome *domain.SearchOutcome
	err     error
	queries []string
}

func (m *mockSearchService) Run(_ context.Context, session *driving.Session, query string) (*domain.SearchOutcome, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	if !session.Begin() {
		return nil, domain.ErrSessionBusy
	}
	defer session.End()
	if m.outcome == nil {
		return &domain.SearchOutcome{Query: query, Message: domain.NoResultsMessage}, nil
	}
	return m.outcome, nil
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	display  []domain.QueryHistoryEntry
	popular  []domain.QueryHistoryEntry
	err      error
	gotLimit int
}

func (m *mockHistoryService) RecordQuery(_ context.Context, _ string) error { return m.err }

func (m *mockHistoryService) ListForDisplay(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	m.gotLimit = limit
	return m.display, m.err
}

func (m *mockHistoryService) ListByFrequency(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	m.gotLimit = limit
	return m.popular, m.err
}

func (m *mockHistoryService) Pin(_ context.Context, _ string) error   { return m.err }
func (m *mockHistoryService) Unpin(_ context.Context, _ string) error { return m.err }

// mockPrompts is a mock PromptReader.
type mockPrompts map[string]string

func (m mockPrompts) Load(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return text, nil
}
