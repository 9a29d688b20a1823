package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/archivist/internal/archivist"
	"github.com/dmitrijs2005/archivist/internal/backup"
	"github.com/dmitrijs2005/archivist/internal/report"
	"github.com/spf13/cobra"
)

// NewReportCommand prints a weekly or monthly highlight digest. Text output
// is the Markdown rendering of the report.
func NewReportCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "report <weekly|monthly>",
		Short:     "Generate a highlight report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(report.Weekly), string(report.Monthly)},
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := report.ParsePeriod(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "report", err)
			}
			return root.run(cmd, func(ctx context.Context, s *session) error {
				r, err := s.svc.Report(ctx, period)
				if err != nil {
					return err
				}
				return s.out.Print(r, func(w io.Writer) {
					io.WriteString(w, report.Markdown(r))
				})
			})
		},
	}
}

// NewExportCommand writes the backup document of the whole archive to
// stdout.
func NewExportCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the archive as a backup document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				doc, err := s.svc.Export(ctx)
				if err != nil {
					return err
				}
				if s.out.Format == "json" {
					return s.out.Print(doc, nil)
				}
				data, err := backup.Encode(doc)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(s.out.Writer, "%s\n", data)
				return err
			})
		},
	}
}

// NewBackupCommand stores a backup document in the file or s3 sink.
func NewBackupCommand(root *RootOptions) *cobra.Command {
	var sink string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				res, err := s.svc.Backup(ctx, sink)
				if err != nil {
					return err
				}
				return s.out.Print(res, func(w io.Writer) {
					fmt.Fprintf(w, "Backed up %d highlights to %s\n", res.Highlights, res.Location)
				})
			})
		},
	}

	cmd.Flags().StringVar(&sink, "sink", archivist.SinkFile, "backup destination (file|s3)")

	return cmd
}

// NewSweepCommand runs one retention sweep regardless of the schedule
// toggle.
func NewSweepCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete highlights older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				n, err := s.svc.Sweep(ctx)
				if err != nil {
					return err
				}
				data := map[string]int64{"deleted": n, "retention_days": int64(s.cfg.DataRetentionDays)}
				return s.out.Print(data, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %d highlights older than %d days\n", n, s.cfg.DataRetentionDays)
				})
			})
		},
	}
}

// NewForgetCommand erases everything stored about one user.
func NewForgetCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <user-id>",
		Short: "Delete all data stored about a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				res, err := s.svc.DeleteUserData(ctx, args[0])
				if err != nil {
					return err
				}
				return s.out.Print(res, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %d highlights, points and consent record\n", res.Highlights)
				})
			})
		},
	}
}

// NewClearCommand empties every table. It refuses to run without --yes.
func NewClearCommand(root *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all highlights, points and consent records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "refusing to clear the archive without --yes")
			}
			return root.run(cmd, func(ctx context.Context, s *session) error {
				res, err := s.svc.ClearAll(ctx)
				if err != nil {
					return err
				}
				return s.out.Print(res, func(w io.Writer) {
					fmt.Fprintf(w, "Cleared %d highlights, %d points records, %d consent records\n",
						res.Highlights, res.Points, res.Consents)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")

	return cmd
}

type diagnoseResult struct {
	Healthy bool              `json:"healthy"`
	Checks  []archivist.Check `json:"checks"`
}

// NewDiagnoseCommand prints the diagnostics checks and exits with
// ExitFailure when one of them failed.
func NewDiagnoseCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Check configuration, storage and the retention job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				checks := s.svc.Diagnose(ctx)
				res := diagnoseResult{Healthy: archivist.Healthy(checks), Checks: checks}

				err := s.out.Print(res, func(w io.Writer) {
					for _, c := range checks {
						mark := "ok  "
						if !c.OK {
							mark = "FAIL"
						}
						fmt.Fprintf(w, "[%s] %s: %s\n", mark, c.Name, c.Detail)
					}
				})
				if err != nil {
					return err
				}
				if !res.Healthy {
					return NewExitError(ExitFailure, "diagnostics found problems")
				}
				return nil
			})
		},
	}
}
