package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Long: `Shows the search audit trail, newest first. Each entry records the query,
the sources that answered and how many artifacts were returned.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", domain.ErrInvalidInput)
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	records, err := svc.Search.RecentSearches(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	p := newPrinter(cmd)
	if historyJSON {
		return p.json(records)
	}
	if len(records) == 0 {
		p.println("No searches recorded.")
		return nil
	}
	for _, r := range records {
		p.printf("  %s  %3d results  %6.0fms  %s\n",
			p.render(p.muted, r.CreatedAt.Local().Format("2006-01-02 15:04")),
			r.TotalResults, r.DurationMS, r.Query)
		p.printf("  %s\n", p.render(p.muted, "  "+sourceNames(r.SourcesSearched)))
	}
	return nil
}
