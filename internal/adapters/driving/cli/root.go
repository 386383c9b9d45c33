// Package cli provides the cobra command tree for caseforest.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// annotationStandalone marks commands that run without the search services.
const annotationStandalone = "standalone"

// Services holds everything the commands need once configuration is valid.
type Services struct {
	Search    driving.SearchService
	History   driving.HistoryService
	Prompts   driven.PromptStore
	Validator driven.GeneratorValidator
	Config    domain.AppConfig

	// Close releases stores and clients. Optional.
	Close func() error
}

// Bootstrap builds the services. It fails when required configuration is missing.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	verbose bool

	bootstrap   Bootstrap
	services    *Services
	configStore driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "caseforest",
	Short: "Search case studies and summarise them",
	Long: `caseforest searches a managed enterprise search engine for case-study
documents, summarises the top results with a generative model and keeps a
history of executed queries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[annotationStandalone] == "true" {
			return nil
		}
		return ensureServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline trace to stderr")
}

// SetBootstrap sets the function that builds the services on first use.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetConfigStore sets the store used by the config commands.
func SetConfigStore(store driven.ConfigStore) {
	configStore = store
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func ensureServices(ctx context.Context) error {
	if services != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	services = s
	return nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("close: %v", err)
	}
}

func standalone(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationStandalone] = "true"
	return cmd
}
