package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <source> <id>",
	Short: "Fetch one artifact from its source",
	Long: `Fetches a single artifact by its source-native id.

Sources: azure_devops, figma, notion, icepanel.

Examples:
  artifact-search get azure_devops 1234
  artifact-search get figma 12:34 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output the artifact as JSON")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	src, err := domain.ParseSource(args[0])
	if err != nil {
		return err
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	artifact, err := svc.Search.GetArtifact(cmd.Context(), src, args[1])
	if err != nil {
		return fmt.Errorf("get %s %s: %w", src, args[1], err)
	}

	p := newPrinter(cmd)
	if getJSON {
		return p.json(artifact)
	}
	p.artifact(artifact)
	return nil
}
