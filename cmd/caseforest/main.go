// Command caseforest searches case-study documents and summarises them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/caseforest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/caseforest/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dir, err := file.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	cli.SetVersion(version)
	cli.SetConfigStore(store)
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		return buildServices(ctx, wiring{store: store, dir: dir})
	})

	return cli.Execute(ctx)
}
