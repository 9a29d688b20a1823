// Package cli is the archivist command line. Every command loads the
// configuration, opens the service for the duration of the call and
// prints its result as text or JSON.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/archivist/internal/archivist"
	"github.com/dmitrijs2005/archivist/internal/config"
	"github.com/dmitrijs2005/archivist/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	Verbose    bool

	clock clockwork.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// App carries build information and the seams tests replace.
type App struct {
	Version string
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// NewRootCommand creates the root command of the archivist CLI.
func NewRootCommand(app App) *cobra.Command {
	opts := &RootOptions{clock: app.Clock}
	if opts.clock == nil {
		opts.clock = clockwork.NewRealClock()
	}

	cmd := &cobra.Command{
		Use:           "archivist",
		Short:         "Archive the highlights of a chat community",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a JSON configuration file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewConsentCommand(opts))
	cmd.AddCommand(NewPointsCommand(opts))
	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewForgetCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewDiagnoseCommand(opts))

	return cmd
}

// session is what a command body works with.
type session struct {
	cfg *config.Config
	svc *archivist.Service
	log logging.Logger
	out *OutputFormatter
}

// run loads the configuration, opens the service and hands both to fn. The
// service is closed when fn returns.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load configuration", err)
	}

	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	log, err := logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "configure logging", err)
	}

	svc, err := archivist.Open(ctx, cfg, o.clock, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "open archive", err)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			log.Warn(ctx, "close archive", "error", cerr)
		}
	}()

	return fn(ctx, &session{
		cfg: cfg,
		svc: svc,
		log: log,
		out: o.formatter(cmd),
	})
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}
