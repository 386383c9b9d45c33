// Package env assembles the application configuration at startup.
//
// Sources, lowest to highest precedence: built-in defaults, the TOML config
// store, a .env file, then the process environment. A .env file never
// overrides variables already set in the environment.
package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Environment variable names.
const (
	VarProjectID          = "PROJECT_ID"
	VarSearchLocation     = "SEARCH_LOCATION"
	VarSearchEngineID     = "SEARCH_ENGINE_ID"
	VarServingConfig      = "SEARCH_SERVING_CONFIG"
	VarSearchTransport    = "SEARCH_TRANSPORT"
	VarSearchSummary      = "SEARCH_SUMMARY"
	VarFAQLink            = "FAQ_LINK"
	VarGeneratorProvider  = "GENERATOR_PROVIDER"
	VarGeneratorProjectID = "GENERATOR_PROJECT_ID"
	VarGeneratorLocation  = "GENERATOR_LOCATION"
	VarGeneratorModel     = "GENERATOR_MODEL"
	VarOpenAIAPIKey       = "OPENAI_API_KEY"
	VarOpenAIBaseURL      = "OPENAI_BASE_URL"
	VarAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	VarOllamaBaseURL      = "OLLAMA_BASE_URL"
	VarHistoryBackend     = "HISTORY_BACKEND"
	VarHistoryPath        = "HISTORY_PATH"
	VarFirestoreProjectID = "FIRESTORE_PROJECT_ID"
	VarFirestoreColl      = "FIRESTORE_COLLECTION"
	VarAuthMode           = "AUTH_MODE"
	VarAccessToken        = "ACCESS_TOKEN"
	VarWebAddr            = "WEB_ADDR"
	VarAllowOrigins       = "ALLOW_ORIGINS"
)

// Loader builds an AppConfig.
type Loader struct {
	// Store is the TOML config store. Optional.
	Store driven.ConfigStore

	// EnvFile is loaded into the environment before reading variables.
	// Empty skips the file.
	EnvFile string

	// Lookup reads a variable. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load returns the merged configuration. The configuration is returned even
// when validation fails so callers can report it.
func (l Loader) Load() (domain.AppConfig, error) {
	cfg := domain.DefaultAppConfig()

	if l.Store != nil {
		applyStore(&cfg, l.Store)
	}

	if l.EnvFile != "" {
		if err := godotenv.Load(l.EnvFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("load %s: %w", l.EnvFile, err)
			}
		} else {
			logger.Debug("Loaded environment from %s", l.EnvFile)
		}
	}

	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}

	if cfg.Generator.ProjectID == "" {
		cfg.Generator.ProjectID = cfg.Search.ProjectID
	}

	return cfg, cfg.Validate()
}

func applyStore(cfg *domain.AppConfig, s driven.ConfigStore) {
	str := func(key string, dst *string) {
		if v := s.GetString(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if _, ok := s.Get(key); ok {
			*dst = s.GetInt(key)
		}
	}
	float := func(key string, dst *float32) {
		if _, ok := s.Get(key); ok {
			*dst = float32(s.GetFloat(key))
		}
	}
	int32v := func(key string, dst *int32) {
		if _, ok := s.Get(key); ok {
			*dst = int32(s.GetInt(key))
		}
	}

	str("search.project_id", &cfg.Search.ProjectID)
	str("search.location", &cfg.Search.Location)
	str("search.engine_id", &cfg.Search.EngineID)
	str("search.serving_config", &cfg.Search.ServingConfig)
	if v := s.GetString("search.transport"); v != "" {
		cfg.Search.Transport = domain.SearchTransport(v)
	}
	num("search.retrieve_count", &cfg.Search.RetrieveCount)
	num("search.display_count", &cfg.Search.DisplayCount)
	num("search.max_cited", &cfg.Search.MaxCited)
	if _, ok := s.Get("search.blocklist"); ok {
		cfg.Search.Blocklist = s.GetStringSlice("search.blocklist")
	}
	if _, ok := s.Get("search.summary"); ok {
		cfg.Search.RequestSummary = s.GetBool("search.summary")
	}
	if _, ok := s.Get("search.faq_link"); ok {
		cfg.Search.FAQLink = s.GetString("search.faq_link")
	}
	if _, ok := s.Get("search.requests_per_second"); ok {
		cfg.Search.RequestsPerSecond = s.GetFloat("search.requests_per_second")
	}

	if v := s.GetString("generator.provider"); v != "" {
		cfg.Generator.Provider = domain.GeneratorProvider(v)
	}
	str("generator.project_id", &cfg.Generator.ProjectID)
	str("generator.location", &cfg.Generator.Location)
	str("generator.model", &cfg.Generator.Model)
	str("generator.api_key", &cfg.Generator.APIKey)
	str("generator.base_url", &cfg.Generator.BaseURL)
	float("generator.temperature", &cfg.Generator.Temperature)
	float("generator.top_p", &cfg.Generator.TopP)
	int32v("generator.top_k", &cfg.Generator.TopK)
	int32v("generator.max_output_tokens", &cfg.Generator.MaxOutputTokens)

	if v := s.GetString("history.backend"); v != "" {
		cfg.History.Backend = domain.HistoryBackend(v)
	}
	str("history.path", &cfg.History.Path)
	str("history.firestore_project_id", &cfg.History.FirestoreProjectID)
	str("history.collection", &cfg.History.Collection)
	num("history.scan_limit", &cfg.History.ScanLimit)
	num("history.display_limit", &cfg.History.DisplayLimit)

	if v := s.GetString("auth.mode"); v != "" {
		cfg.Auth.Mode = domain.AuthMode(v)
	}
	str("auth.access_token", &cfg.Auth.AccessToken)

	str("web.addr", &cfg.Web.Addr)
	if _, ok := s.Get("web.allow_origins"); ok {
		cfg.Web.AllowOrigins = s.GetStringSlice("web.allow_origins")
	}
}

func applyEnv(cfg *domain.AppConfig, lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(VarProjectID, &cfg.Search.ProjectID)
	str(VarSearchLocation, &cfg.Search.Location)
	str(VarSearchEngineID, &cfg.Search.EngineID)
	str(VarServingConfig, &cfg.Search.ServingConfig)
	str(VarFAQLink, &cfg.Search.FAQLink)
	if v, ok := lookup(VarSearchTransport); ok && v != "" {
		cfg.Search.Transport = domain.SearchTransport(strings.ToLower(v))
	}
	if v, ok := lookup(VarSearchSummary); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, VarSearchSummary, v))
		} else {
			cfg.Search.RequestSummary = b
		}
	}

	if v, ok := lookup(VarGeneratorProvider); ok && v != "" {
		cfg.Generator.Provider = domain.GeneratorProvider(strings.ToLower(v))
	}
	str(VarGeneratorProjectID, &cfg.Generator.ProjectID)
	str(VarGeneratorLocation, &cfg.Generator.Location)
	str(VarGeneratorModel, &cfg.Generator.Model)
	str(VarOpenAIAPIKey, &cfg.Generator.APIKey)
	str(VarOpenAIBaseURL, &cfg.Generator.BaseURL)
	switch cfg.Generator.Provider {
	case domain.GeneratorProviderAnthropic:
		str(VarAnthropicAPIKey, &cfg.Generator.APIKey)
	case domain.GeneratorProviderOllama:
		str(VarOllamaBaseURL, &cfg.Generator.BaseURL)
	}

	if v, ok := lookup(VarHistoryBackend); ok && v != "" {
		cfg.History.Backend = domain.HistoryBackend(strings.ToLower(v))
	}
	str(VarHistoryPath, &cfg.History.Path)
	str(VarFirestoreProjectID, &cfg.History.FirestoreProjectID)
	str(VarFirestoreColl, &cfg.History.Collection)

	if v, ok := lookup(VarAuthMode); ok && v != "" {
		cfg.Auth.Mode = domain.AuthMode(strings.ToLower(v))
	}
	str(VarAccessToken, &cfg.Auth.AccessToken)

	str(VarWebAddr, &cfg.Web.Addr)
	if v, ok := lookup(VarAllowOrigins); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Web.AllowOrigins = origins
	}

	return errors.Join(errs...)
}
