package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show pinned and recent queries",
	Long: `Lists pinned queries first, then the most recently executed ones.
Pinned queries are marked with *.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the most frequently executed queries",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPopular,
}

var historyPinCmd = &cobra.Command{
	Use:   "pin [query]",
	Short: "Pin a query so it is always listed first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.History.Pin(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("pin: %w", err)
		}
		cmd.Printf("Pinned %q\n", args[0])
		return nil
	},
}

var historyUnpinCmd = &cobra.Command{
	Use:   "unpin [query]",
	Short: "Remove the pin from a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.History.Unpin(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("unpin: %w", err)
		}
		cmd.Printf("Unpinned %q\n", args[0])
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 0, "maximum number of queries (0 = configured default)")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.AddCommand(historyPopularCmd)
	historyCmd.AddCommand(historyPinCmd)
	historyCmd.AddCommand(historyUnpinCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	entries, err := services.History.ListForDisplay(cmd.Context(), resolveHistoryLimit())
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return outputHistory(cmd, entries)
}

func runHistoryPopular(cmd *cobra.Command, _ []string) error {
	entries, err := services.History.ListByFrequency(cmd.Context(), resolveHistoryLimit())
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return outputHistory(cmd, entries)
}

func resolveHistoryLimit() int {
	if historyLimit > 0 {
		return historyLimit
	}
	if services.Config.History.DisplayLimit > 0 {
		return services.Config.History.DisplayLimit
	}
	return domain.DefaultAppConfig().History.DisplayLimit
}

func outputHistory(cmd *cobra.Command, entries []domain.QueryHistoryEntry) error {
	if historyJSON {
		if entries == nil {
			entries = []domain.QueryHistoryEntry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	newRenderer(cmd.OutOrStdout(), true).history(cmd.OutOrStdout(), entries)
	return nil
}
