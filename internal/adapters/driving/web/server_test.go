package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

type mockSearch struct {
	outcome *domain.SearchOutcome
	err     error
	got     string
}

func (m *mockSearch) Run(_ context.Context, session *driving.Session, query string) (*domain.SearchOutcome, error) {
	m.got = query
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}
	if m.err != nil {
		return nil, m.err
	}
	if !session.Begin() {
		return nil, domain.ErrSessionBusy
	}
	defer session.End()
	return m.outcome, nil
}

type mockHistory struct {
	entries []domain.QueryHistoryEntry
	err     error
	limit   int
}

func (m *mockHistory) RecordQuery(context.Context, string) error { return nil }
func (m *mockHistory) Pin(context.Context, string) error         { return nil }
func (m *mockHistory) Unpin(context.Context, string) error       { return nil }

func (m *mockHistory) ListForDisplay(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	m.limit = limit
	return m.entries, m.err
}

func (m *mockHistory) ListByFrequency(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	m.limit = limit
	return m.entries, m.err
}

func outcome() *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Query:           "小売",
		Summary:         "- **C社** は在庫を削減した。",
		SummarySpans:    []domain.TextSpan{{Text: "- "}, {Text: "C社", Emphasized: true}, {Text: " は在庫を削減した。"}},
		Recommendations: []string{"在庫", "需要予測", "店舗"},
		Results: []domain.RenderedResult{{
			SearchResult: domain.SearchResult{Title: "C社 事例", Link: "https://example.com/c"},
			SnippetSpans: []domain.TextSpan{{Text: "在庫"}, {Text: "削減", Emphasized: true}},
		}},
	}
}

func newServer(t *testing.T, s *mockSearch, h *mockHistory) *Server {
	t.Helper()
	srv, err := NewServer(s, h, Config{Addr: ":0"})
	require.NoError(t, err)
	return srv
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServer_RequiresServices(t *testing.T) {
	_, err := NewServer(nil, &mockHistory{}, Config{})
	assert.Error(t, err)
	_, err = NewServer(&mockSearch{}, nil, Config{})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	w := get(newServer(t, &mockSearch{}, &mockHistory{}), "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Greeting, w.Body.String())
}

func TestSearchText(t *testing.T) {
	search := &mockSearch{outcome: outcome()}
	w := get(newServer(t, search, &mockHistory{}), "/search?q="+url.QueryEscape("小売"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "小売", search.got)
	body := w.Body.String()
	assert.Contains(t, body, "検索クエリ: 小売")
	assert.Contains(t, body, "- C社 は在庫を削減した。")
	assert.Contains(t, body, "[1] C社 事例")
	assert.Contains(t, body, "https://example.com/c")
	assert.Contains(t, body, "在庫削減")
	assert.Contains(t, body, "在庫 / 需要予測 / 店舗")
}

func TestSearchText_FallbackMessage(t *testing.T) {
	search := &mockSearch{outcome: &domain.SearchOutcome{Query: "zzz", Message: domain.NoResultsMessage}}
	w := get(newServer(t, search, &mockHistory{}), "/search?q=zzz")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), domain.NoResultsMessage)
}

func TestSearchText_MissingQuery(t *testing.T) {
	for _, target := range []string{"/search", "/search?q=", "/search?q=%20"} {
		t.Run(target, func(t *testing.T) {
			search := &mockSearch{outcome: outcome()}
			w := get(newServer(t, search, &mockHistory{}), target)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), MissingQueryText)
			assert.Empty(t, search.got, "search must not run without a query")
		})
	}
}

func TestFAQ(t *testing.T) {
	srv, err := NewServer(&mockSearch{}, &mockHistory{}, Config{FAQLink: "https://example.com/faq.pdf"})
	require.NoError(t, err)

	w := get(srv, "/faq")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/faq.pdf", w.Header().Get("Location"))
}

func TestFAQ_NotConfigured(t *testing.T) {
	w := get(newServer(t, &mockSearch{}, &mockHistory{}), "/faq")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		code   int
	}{
		{name: "missing query", target: "/api/search", code: http.StatusBadRequest},
		{name: "blank query", target: "/api/search?q=%20", code: http.StatusBadRequest},
		{name: "busy", target: "/search?q=a", err: domain.ErrSessionBusy, code: http.StatusTooManyRequests},
		{name: "unexpected", target: "/api/search?q=a", err: errors.New("boom"), code: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newServer(t, &mockSearch{err: tt.err}, &mockHistory{}), tt.target)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestSearchJSON(t *testing.T) {
	w := get(newServer(t, &mockSearch{outcome: outcome()}, &mockHistory{}), "/api/search?q=x")

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.SearchOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "小売", got.Query)
	assert.Len(t, got.Results, 1)
	assert.Equal(t, []string{"在庫", "需要予測", "店舗"}, got.Recommendations)
}

func TestHistoryEndpoints(t *testing.T) {
	history := &mockHistory{entries: []domain.QueryHistoryEntry{{Query: "建設", Count: 4}}}
	srv := newServer(t, &mockSearch{}, history)

	w := get(srv, "/api/history")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultHistoryN, history.limit)
	assert.Contains(t, w.Body.String(), `"query":"建設"`)

	w = get(srv, "/api/history/popular?limit=500")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxHistoryLimit, history.limit)

	w = get(srv, "/api/history/popular?limit=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, history.limit)
}

func TestHistoryEndpoints_EmptyAndError(t *testing.T) {
	w := get(newServer(t, &mockSearch{}, &mockHistory{}), "/api/history")
	assert.JSONEq(t, `{"queries":[]}`, w.Body.String())

	w = get(newServer(t, &mockSearch{}, &mockHistory{err: errors.New("down")}), "/api/history/popular")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	srv, err := NewServer(&mockSearch{}, &mockHistory{}, Config{AllowOrigins: []string{"https://app.example.com"}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv, err := NewServer(&mockSearch{}, &mockHistory{}, Config{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.Run(ctx))
}
