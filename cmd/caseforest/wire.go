package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/ai"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/config/env"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/google"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/search/discoveryengine"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/storage/firestore"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caseforest/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/cli"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/core/services"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Default file names under the config directory.
const (
	sqliteFile = "history.db"
	badgerDir  = "history"
	promptDir  = "prompts"
)

// wiring holds the inputs buildServices needs.
type wiring struct {
	store driven.ConfigStore
	dir   string

	// envFile overrides env.DefaultEnvFile. "-" disables it.
	envFile string

	// lookup overrides os.LookupEnv.
	lookup func(string) (string, bool)

	// tokens overrides the provider built from the auth settings.
	tokens *google.TokenProvider
}

// buildServices loads configuration and connects every adapter.
func buildServices(ctx context.Context, w wiring) (*cli.Services, error) {
	envFile := w.envFile
	switch envFile {
	case "":
		envFile = env.DefaultEnvFile
	case "-":
		envFile = ""
	}

	cfg, err := env.Loader{Store: w.store, EnvFile: envFile, Lookup: w.lookup}.Load()
	if err != nil {
		return nil, err
	}

	tokens := w.tokens
	if tokens == nil {
		tokens, err = google.NewTokenProvider(ctx, cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("credentials: %w", err)
		}
	}
	ts := google.NewTokenSource(ctx, tokens)
	logger.Debug("Auth mode: %s", tokens.Mode())

	backend, err := newBackend(ctx, cfg.Search, tokens, ts)
	if err != nil {
		return nil, err
	}

	store, err := openHistoryStore(ctx, cfg.History, w.dir, ts)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(w.dir, promptDir))
	if err != nil {
		store.Close()
		return nil, err
	}

	history := services.NewHistoryService(store, cfg.History.ScanLimit)
	search := services.NewSearchService(backend, history, prompts, cfg.Search)
	search.SetHistoryLimit(cfg.History.DisplayLimit)

	gen, err := ai.CreateGenerator(ctx, &cfg.Generator)
	if err != nil {
		logger.Warn("Generator disabled: %v", err)
		gen = nil
	}
	if gen != nil {
		search.SetGenerator(gen, ai.GenerateOptions(cfg.Generator))
		logger.Debug("Generator: %s", gen.ModelName())
	}

	return &cli.Services{
		Search:    search,
		History:   history,
		Prompts:   prompts,
		Validator: ai.NewConfigValidator(),
		Config:    cfg,
		Close: func() error {
			errs := []error{store.Close()}
			if gen != nil {
				errs = append(errs, gen.Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// newBackend builds the search transport selected by settings.
func newBackend(
	ctx context.Context,
	settings domain.SearchSettings,
	tokens driven.TokenProvider,
	ts oauth2.TokenSource,
) (driven.SearchBackend, error) {
	switch settings.Transport {
	case domain.SearchTransportREST:
		return discoveryengine.NewRESTClient(settings, tokens), nil
	case domain.SearchTransportTyped, "":
		return discoveryengine.NewTypedClient(ctx, settings, ts)
	default:
		return nil, fmt.Errorf("%w: search transport %q", domain.ErrUnsupportedType, settings.Transport)
	}
}

// openHistoryStore opens the configured query history store.
// Relative and empty paths resolve under dir.
func openHistoryStore(
	ctx context.Context,
	settings domain.HistorySettings,
	dir string,
	ts oauth2.TokenSource,
) (driven.HistoryStore, error) {
	switch settings.Backend {
	case domain.HistoryBackendMemory:
		return memory.NewHistoryStore(), nil
	case domain.HistoryBackendSQLite, "":
		return sqlite.NewStore(resolvePath(dir, settings.Path, sqliteFile))
	case domain.HistoryBackendBadger:
		return badger.Open(resolvePath(dir, settings.Path, badgerDir))
	case domain.HistoryBackendFirestore:
		return firestore.NewStore(ctx, settings.FirestoreProjectID, settings.Collection, ts)
	default:
		return nil, fmt.Errorf("%w: history backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}

func resolvePath(dir, path, fallback string) string {
	if path == "" {
		return filepath.Join(dir, fallback)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
