// Package web provides the HTTP surface: a greeting page and a search
// endpoint rendering the query and result text, plus JSON endpoints for
// the outcome and the query history.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/markup"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Greeting is the body of GET /.
const Greeting = "Hello from caseforest!"

// MissingQueryText is the result text of GET /search without a query.
const MissingQueryText = "Specify query please."

const (
	requestTimeout    = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
	defaultHistoryN   = 10
	maxHistoryLimit   = 100
	readHeaderTimeout = 10 * time.Second
)

// Config configures the HTTP surface.
type Config struct {
	Addr         string
	AllowOrigins []string

	// FAQLink is the redirect target of GET /faq. Empty disables the route.
	FAQLink string
}

// Server serves the HTTP surface.
type Server struct {
	search  driving.SearchService
	history driving.HistoryService
	engine  *gin.Engine
	cfg     Config
}

// NewServer builds the router. Each request runs in its own session.
func NewServer(search driving.SearchService, history driving.HistoryService, cfg Config) (*Server, error) {
	if search == nil {
		return nil, errors.New("web: search service is required")
	}
	if history == nil {
		return nil, errors.New("web: history service is required")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if logger.IsVerbose() {
		r.Use(gin.LoggerWithWriter(logger.Output()))
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	s := &Server{search: search, history: history, engine: r, cfg: cfg}

	r.GET("/", s.handleIndex)
	r.GET("/search", s.handleSearchText)
	r.GET("/faq", s.handleFAQ)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	api := r.Group("/api")
	{
		api.GET("/search", s.handleSearchJSON)
		api.GET("/history", s.handleHistory)
		api.GET("/history/popular", s.handlePopular)
	}

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, Greeting)
}

func (s *Server) handleFAQ(c *gin.Context) {
	if s.cfg.FAQLink == "" {
		c.String(http.StatusNotFound, "no FAQ document configured")
		return
	}
	c.Redirect(http.StatusFound, s.cfg.FAQLink)
}

// handleSearchText renders the query and the raw result text.
// A missing query is answered with a prompt, not an error status.
func (s *Server) handleSearchText(c *gin.Context) {
	if strings.TrimSpace(c.Query("q")) == "" {
		c.String(http.StatusOK, RenderText(&domain.SearchOutcome{Message: MissingQueryText}))
		return
	}
	outcome, ok := s.run(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, RenderText(outcome))
}

func (s *Server) handleSearchJSON(c *gin.Context) {
	outcome, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) run(c *gin.Context) (*domain.SearchOutcome, bool) {
	query := c.Query("q")
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	outcome, err := s.search.Run(ctx, driving.NewSession(), query)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.String(http.StatusBadRequest, "missing query parameter q")
		return nil, false
	case errors.Is(err, domain.ErrSessionBusy):
		c.String(http.StatusTooManyRequests, "a search is already running")
		return nil, false
	case err != nil:
		logger.Error("search %q: %v", query, err)
		c.String(http.StatusInternalServerError, domain.NoResultsMessage)
		return nil, false
	}
	return outcome, true
}

func (s *Server) handleHistory(c *gin.Context) {
	entries, err := s.history.ListForDisplay(c.Request.Context(), limitParam(c))
	if err != nil {
		logger.Error("history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": nonNil(entries)})
}

func (s *Server) handlePopular(c *gin.Context) {
	entries, err := s.history.ListByFrequency(c.Request.Context(), limitParam(c))
	if err != nil {
		logger.Error("history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": nonNil(entries)})
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return defaultHistoryN
	}
	return min(n, maxHistoryLimit)
}

func nonNil(entries []domain.QueryHistoryEntry) []domain.QueryHistoryEntry {
	if entries == nil {
		return []domain.QueryHistoryEntry{}
	}
	return entries
}

// RenderText renders an outcome as plain text: the query, the summary or
// fallback message, then one block per result.
func RenderText(o *domain.SearchOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "検索クエリ: %s\n\n", o.Query)

	if o.Message != "" {
		b.WriteString(o.Message)
		b.WriteString("\n")
		return b.String()
	}

	if len(o.SummarySpans) > 0 {
		b.WriteString(markup.Spans(o.SummarySpans).Text())
		b.WriteString("\n\n")
	}
	for i, r := range o.Results {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "    %s\n", r.Link)
		fmt.Fprintf(&b, "    %s\n", markup.Spans(r.SnippetSpans).Text())
	}
	if len(o.Recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(o.Recommendations, " / "))
		b.WriteString("\n")
	}
	return b.String()
}
