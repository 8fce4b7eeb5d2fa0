package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search artifacts across configured sources",
	Long: `Routes a natural-language query to the relevant applications, searches
them concurrently and prints the merged results newest first with a summary.

Examples:
  artifact-search search "risks related to insulin dosing UI"
  artifact-search search --json "C4 components of the pump firmware"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	query := domain.SearchQuery{Query: strings.Join(args, " ")}
	if err := query.Validate(); err != nil {
		return err
	}

	if len(svc.Search.ConfiguredSources()) == 0 {
		return domain.ErrNoSources
	}

	result, err := svc.Search.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	p := newPrinter(cmd)
	if searchJSON {
		return p.json(result)
	}
	p.searchResult(result)
	return nil
}
