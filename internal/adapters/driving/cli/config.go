package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

const configCheckTimeout = 15 * time.Second

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, edit and check configuration",
	Long: `Configuration is read from defaults, then ~/.caseforest/config.toml,
then a .env file, then the process environment.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and generator connectivity",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configSetList bool

var configSetCmd = standalone(&cobra.Command{
	Use:   "set [key] [value]",
	Short: "Write a value to the config file",
	Long: `Write a dot-notation key to the config file, for example:

  caseforest config set search.project_id my-project
  caseforest config set search.display_count 10
  caseforest config set --list search.blocklist "FAQ,Template"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
})

var configPathCmd = standalone(&cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		cmd.Println(configStore.Path())
		return nil
	},
})

func init() {
	configSetCmd.Flags().BoolVar(&configSetList, "list", false, "treat the value as a comma-separated list")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg := services.Config

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Serving config: %s\n", cfg.Search.ServingConfigPath())
	cmd.Printf("  Transport: %s\n", cfg.Search.Transport)
	cmd.Printf("  Retrieve / display / cited: %d / %d / %d\n",
		cfg.Search.RetrieveCount, cfg.Search.DisplayCount, cfg.Search.MaxCited)
	cmd.Printf("  Backend summary: %t\n", cfg.Search.RequestSummary)
	cmd.Printf("  Blocklist: %s\n", strings.Join(cfg.Search.Blocklist, ", "))
	cmd.Println()

	cmd.Println("[Generator]")
	cmd.Printf("  Provider: %s\n", cfg.Generator.Provider.Description())
	if cfg.Generator.Provider != domain.GeneratorProviderNone {
		cmd.Printf("  Model: %s\n", cfg.Generator.Model)
	}
	if cfg.Generator.Provider == domain.GeneratorProviderVertex {
		cmd.Printf("  Project: %s (%s)\n", cfg.Generator.ProjectID, cfg.Generator.Location)
	}
	if cfg.Generator.Provider.RequiresAPIKey() {
		if cfg.Generator.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.Generator.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !cfg.Generator.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Backend: %s\n", cfg.History.Backend)
	switch cfg.History.Backend {
	case domain.HistoryBackendFirestore:
		cmd.Printf("  Collection: %s/%s\n", cfg.History.FirestoreProjectID, cfg.History.Collection)
	case domain.HistoryBackendSQLite, domain.HistoryBackendBadger:
		path := cfg.History.Path
		if path == "" {
			path = "(default)"
		}
		cmd.Printf("  Path: %s\n", path)
	}
	cmd.Println()

	cmd.Println("[Auth]")
	cmd.Printf("  Mode: %s\n", cfg.Auth.Mode)
	if cfg.Auth.Mode == domain.AuthModeStatic {
		cmd.Printf("  Token: %s\n", maskAPIKey(cfg.Auth.AccessToken))
	}
	cmd.Println()

	cmd.Println("[Web]")
	cmd.Printf("  Address: %s\n", cfg.Web.Addr)
	cmd.Printf("  Allowed origins: %s\n", strings.Join(cfg.Web.AllowOrigins, ", "))

	if configStore != nil {
		cmd.Println()
		cmd.Printf("Config file: %s\n", configStore.Path())
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	cmd.Println("Configuration: OK")

	if services.Validator == nil {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, configCheckTimeout)
	defer cancel()

	gen := services.Config.Generator
	if err := services.Validator.ValidateGenerator(ctx, &gen); err != nil {
		return fmt.Errorf("generator %s: %w", gen.Provider, err)
	}
	if gen.IsConfigured() {
		cmd.Printf("Generator: OK (%s)\n", gen.Provider.Description())
	} else {
		cmd.Println("Generator: disabled")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	key, raw := args[0], args[1]
	if !strings.Contains(key, ".") {
		return fmt.Errorf("%w: key %q must be section.name", domain.ErrInvalidInput, key)
	}

	var value any
	if configSetList {
		value = parseList(raw)
	} else {
		value = parseValue(raw)
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

// parseValue converts a command-line value to an integer, float, bool or string.
func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
