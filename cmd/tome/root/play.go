package root

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/metrics"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/tui"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open the interactive game",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, cleanup, err := openService(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr := s.cfg.MetricsAddr; addr != "" {
				go func() {
					if err := metrics.Serve(ctx, addr, s.logger); err != nil {
						s.logger.Error("Metrics server stopped", zap.Error(err))
					}
				}()
			}
			return tui.RunPlay(ctx, s.svc, s.cfg.TickInterval, cmd.OutOrStdout())
		},
	}

	return cmd
}
