package tui

import (
	"context"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

type mockSearchService struct {
	outcome *domain.SearchOutcome
	err     error
}

func (m *mockSearchService) Run(context.Context, *driving.Session, string) (*domain.SearchOutcome, error) {
	return m.outcome, m.err
}

type mockHistoryService struct {
	entries []domain.QueryHistoryEntry
}

func (m *mockHistoryService) RecordQuery(context.Context, string) error { return nil }

func (m *mockHistoryService) ListForDisplay(context.Context, int) ([]domain.QueryHistoryEntry, error) {
	return m.entries, nil
}

func (m *mockHistoryService) ListByFrequency(context.Context, int) ([]domain.QueryHistoryEntry, error) {
	return m.entries, nil
}

func (m *mockHistoryService) Pin(context.Context, string) error   { return nil }
func (m *mockHistoryService) Unpin(context.Context, string) error { return nil }

type mockActions struct{}

func (mockActions) Open(string) error { return nil }
func (mockActions) Copy(string) error { return nil }
