package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/archivist/internal/httpapi"
	"github.com/dmitrijs2005/archivist/internal/shared"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand runs the adapter HTTP intake and the retention schedule
// until the command context is canceled.
func NewServeCommand(root *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the adapter HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				srv := httpapi.NewServer(s.svc, s.log, httpapi.Options{
					Addr:  shared.FirstNonEmpty(addr, s.cfg.HTTPAddr),
					Token: s.cfg.AdapterToken,
				})
				if s.cfg.AdapterToken == "" {
					s.log.Warn(ctx, "ADAPTER_TOKEN is empty; /v1 routes are unauthenticated")
				}

				s.svc.StartRetention(ctx)

				errCh := make(chan error, 1)
				go func() {
					errCh <- srv.Start()
				}()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}

				s.log.Info(context.Background(), "shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				return <-errCh
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")

	return cmd
}
