package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driving"
)

var (
	searchLimit int
	searchJSON  bool
	searchPlain bool
)

// cliSession is shared by every query issued from this process.
var cliSession = driving.NewSession()

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search case studies",
	Long: `Searches case-study documents and summarises the most relevant results.
The summary cites up to three companies and ends with suggested follow-up
queries. The query is recorded in the history when results are found.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results to print (0 = all)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the outcome as JSON")
	searchCmd.Flags().BoolVar(&searchPlain, "plain", false, "disable terminal styling")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	outcome, err := services.Search.Run(cmd.Context(), cliSession, args[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, outcome)
	}

	newRenderer(cmd.OutOrStdout(), searchPlain).outcome(cmd.OutOrStdout(), outcome, searchLimit)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, outcome *domain.SearchOutcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
