// Package cli provides the cobra command tree for artifact-search.
package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
	"github.com/custodia-labs/artifact-search/internal/logger"
)

// Services are the driving ports the commands run against.
type Services struct {
	Search driving.SearchService

	// Watch runs background work, such as prompt reloading, until ctx ends.
	// Long-running commands start it; it may be nil.
	Watch func(ctx context.Context)

	// Close releases everything the bootstrap opened. It may be nil.
	Close func() error
}

// SettingsLoader opens the settings service for a config directory.
type SettingsLoader func(configDir string) (driving.SettingsService, error)

// ServicesLoader builds the search stack for a config directory.
type ServicesLoader func(ctx context.Context, configDir string) (*Services, error)

// errNotBootstrapped is returned when a command runs before SetBootstrap.
var errNotBootstrapped = errors.New("cli: services not configured")

var (
	version = "dev"

	verbose   bool
	configDir string

	loadSettingsFn SettingsLoader
	loadServicesFn ServicesLoader

	services *Services
	settings driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "artifact-search",
	Short: "Federated search over MedTech risk management artifacts",
	Long: `artifact-search answers natural-language questions about risks, requirements,
mitigations, designs and architecture by searching Azure DevOps, Figma,
Notion and IcePanel at once.

Queries are routed to the relevant applications by an Azure OpenAI model
(or keyword rules when none is configured), results are merged newest
first and summarised.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("artifact-search version %s\n", version)
		if verbose {
			cmd.Printf("  go       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if rev := vcsRevision(); rev != "" {
				cmd.Printf("  revision %s\n", rev)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.artifact-search)")
	rootCmd.AddCommand(versionCmd)
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// SetBootstrap installs the loaders used to build services on demand.
func SetBootstrap(loadSettings SettingsLoader, loadServices ServicesLoader) {
	loadSettingsFn = loadSettings
	loadServicesFn = loadServices
}

// SetVersion sets the version reported by the version command and MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases any services it opened.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeServices(); cerr != nil {
		logger.Warn("Shutdown: %v", cerr)
	}
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error: "+describeError(err))
	}
	return err
}

// loadServices builds the search stack once per process.
func loadServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if loadServicesFn == nil {
		return nil, errNotBootstrapped
	}
	s, err := loadServicesFn(cmd.Context(), configDir)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Search == nil {
		return nil, errNotBootstrapped
	}
	services = s
	return services, nil
}

// loadSettings opens the settings service without building connectors.
func loadSettings() (driving.SettingsService, error) {
	if settings != nil {
		return settings, nil
	}
	if loadSettingsFn == nil {
		return nil, errNotBootstrapped
	}
	s, err := loadSettingsFn(configDir)
	if err != nil {
		return nil, err
	}
	settings = s
	return settings, nil
}

func closeServices() error {
	s := services
	services = nil
	settings = nil
	if s == nil || s.Close == nil {
		return nil
	}
	return s.Close()
}

// describeError adds a hint for errors a user can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSources):
		return err.Error() + " (configure a source with 'artifact-search config set')"
	case errors.Is(err, domain.ErrUnknownSource):
		return err.Error() + " (run 'artifact-search sources' to list them)"
	default:
		return err.Error()
	}
}

// startWatch runs the background watchers for a long-running command.
// The returned function stops them and waits for them to exit.
func startWatch(ctx context.Context, s *Services) func() {
	ctx, cancel := context.WithCancel(ctx)
	if s.Watch == nil {
		return cancel
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Watch(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}
