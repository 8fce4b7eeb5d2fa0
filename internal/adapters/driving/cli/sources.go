package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// errUnhealthy is returned by health when a configured source fails its check.
var errUnhealthy = errors.New("one or more sources are unreachable")

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List sources and whether they are configured",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Test the connection to every configured source",
	Long: `Runs a lightweight authenticated request against each configured source.
Exits non-zero when any configured source is unreachable.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(healthCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	configured := svc.Search.ConfiguredSources()
	statuses := make([]domain.SourceStatus, 0, len(domain.AllSources()))
	for _, src := range domain.AllSources() {
		statuses = append(statuses, domain.SourceStatus{Source: src, Configured: slices.Contains(configured, src)})
	}

	p := newPrinter(cmd)
	if sourcesJSON {
		return p.json(statuses)
	}
	for _, st := range statuses {
		p.printf("  %-14s %-14s %s\n", st.Source, st.Source.DisplayName(),
			p.status(st.Configured, "configured", "not configured"))
	}
	return nil
}

func runHealth(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	p := newPrinter(cmd)
	configured := svc.Search.ConfiguredSources()
	if len(configured) == 0 {
		p.println("No sources configured.")
		return nil
	}

	results := svc.Search.TestConnections(cmd.Context())
	healthy := true
	for _, src := range configured {
		ok := results[src]
		healthy = healthy && ok
		p.printf("  %-14s %s\n", src.DisplayName(), p.status(ok, "connected", "unreachable"))
	}
	if !healthy {
		return fmt.Errorf("health: %w", errUnhealthy)
	}
	return nil
}
