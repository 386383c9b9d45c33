package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/web"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// promptWatcher is implemented by prompt stores that reload on file changes.
type promptWatcher interface {
	Watch(ctx context.Context) error
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Routes:
  GET /                     greeting
  GET /search?q=<query>     query, summary and results as text
  GET /faq                  redirect to the FAQ document
  GET /api/search?q=<query> the full outcome as JSON
  GET /api/history          pinned and recent queries
  GET /api/history/popular  most frequent queries

Prompt files are reloaded when they change on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from WEB_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.SetTimestamps(true)

	addr := serveAddr
	if addr == "" {
		addr = services.Config.Web.Addr
	}

	server, err := web.NewServer(services.Search, services.History, web.Config{
		Addr:         addr,
		AllowOrigins: services.Config.Web.AllowOrigins,
		FAQLink:      services.Config.Search.FAQLink,
	})
	if err != nil {
		return err
	}

	watchPrompts(ctx)

	cmd.Printf("Listening on %s\n", addr)
	return server.Run(ctx)
}

func watchPrompts(ctx context.Context) {
	w, ok := services.Prompts.(promptWatcher)
	if !ok {
		return
	}
	go func() {
		if err := w.Watch(ctx); err != nil {
			logger.Warn("prompt watch: %v", err)
		}
	}()
}
