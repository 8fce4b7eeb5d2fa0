package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// secretSuffixes mark keys whose values are masked and read without echo.
var secretSuffixes = []string{".pat", ".api_key", ".access_token", ".client_secret", ".redis_password"}

// stdinReader is swapped in tests.
var stdinReader = func() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var configReveal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `Settings live in ~/.artifact-search/config.toml. Environment variables
override file values; 'config list' shows which variable applies to each key.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a setting in the config file",
	Long: `Stores a setting in the config file. When the value is omitted it is read
from stdin, without echo on a terminal, which keeps tokens out of shell history.

Examples:
  artifact-search config set azure_devops.org_url https://dev.azure.com/contoso
  artifact-search config set azure_devops.pat
  artifact-search config set search.connector_timeout 10s`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func init() {
	configListCmd.Flags().BoolVar(&configReveal, "reveal", false, "show secret values")
	configGetCmd.Flags().BoolVar(&configReveal, "reveal", false, "show secret values")
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	p := newPrinter(cmd)
	for _, key := range s.Keys() {
		value, ok := s.Value(key)
		shown := p.render(p.muted, "(unset)")
		if ok {
			shown = displayValue(key, value)
		}
		p.printf("  %-28s %-40s %s\n", key, shown, p.render(p.muted, s.EnvVar(key)))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	key := args[0]
	if !knownKey(s.Keys(), key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value, _ := s.Value(key)
	newPrinter(cmd).println(displayValue(key, value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", key)
		value, err = stdinReader()
		if err != nil {
			return fmt.Errorf("read value: %w", err)
		}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("value must not be empty")
	}

	if err := s.Set(key, value); err != nil {
		return err
	}
	p := newPrinter(cmd)
	p.printf("Saved %s\n", key)

	if strings.HasPrefix(key, "ai.") {
		p.printf("Validating AI configuration... ")
		if err := s.ValidateAIConfig(cmd.Context()); err != nil {
			p.println(p.render(p.bad, "FAILED"))
			return fmt.Errorf("AI configuration validation failed: %w", err)
		}
		p.println(p.render(p.good, "OK"))
	}
	return nil
}

func displayValue(key, value string) string {
	if configReveal || !isSecret(key) || value == "" {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

func isSecret(key string) bool {
	for _, suffix := range secretSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

func knownKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
