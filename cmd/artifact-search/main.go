// Command artifact-search searches MedTech risk management artifacts across
// Azure DevOps, Figma, Notion and IcePanel.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/artifact-search/internal/adapters/driving/cli"
	"github.com/custodia-labs/artifact-search/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &app.Bootstrap{Version: version}
	cli.SetVersion(version)
	cli.SetBootstrap(b.LoadSettings, b.LoadServices)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
