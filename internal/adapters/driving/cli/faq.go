package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseforest/internal/adapters/driving/tui"
	"github.com/custodia-labs/caseforest/internal/core/domain"
)

var faqOpen bool

// openLink is replaced in tests.
var openLink = tui.NewSystemActions().Open

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Show the FAQ document link",
	Long: `Print the link to the FAQ document. With --open the link is opened in
the system browser. The link is set with search.faq_link or FAQ_LINK.`,
	Args: cobra.NoArgs,
	RunE: runFAQ,
}

func init() {
	faqCmd.Flags().BoolVar(&faqOpen, "open", false, "open the link in the browser")
	rootCmd.AddCommand(faqCmd)
}

func runFAQ(cmd *cobra.Command, _ []string) error {
	link := services.Config.Search.FAQLink
	if link == "" {
		return fmt.Errorf("%w: search.faq_link", domain.ErrMissingConfig)
	}
	cmd.Println(link)
	if !faqOpen {
		return nil
	}
	if err := openLink(link); err != nil {
		return fmt.Errorf("open faq: %w", err)
	}
	return nil
}
