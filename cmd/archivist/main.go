package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/archivist/internal/cli"
)

// Set with -ldflags "-X main.buildVersion=...".
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := cli.NewRootCommand(cli.App{
		Version: fmt.Sprintf("%s (built %s, commit %s)", buildVersion, buildDate, buildCommit),
	})

	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		out := &cli.OutputFormatter{Format: "text", Writer: os.Stdout, ErrWriter: os.Stderr}
		out.Fail(err)
	}
	os.Exit(cli.GetExitCode(err))
}
