package cli

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/graphscope/internal/metrics"
	"github.com/matzehuels/graphscope/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve headless scenes over HTTP",
		Long: `Serve starts the inspection API. Each session holds one laid-out graph
and a viewport; requests move the viewport, hit-test screen points and
read back the visible elements and labels once the view has settled.

Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			ctx := cmd.Context()

			var col *metrics.Collector
			if !noMetrics {
				if col, err = metrics.New(nil); err != nil {
					return err
				}
				col.Install()
			}

			reg, lc := c.newRegistry(ctx, cfg)
			defer lc.Close()

			srv := server.New(server.Options{
				Config:   cfg,
				Registry: reg,
				Metrics:  col,
				Logger:   c.Logger,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(gctx, addr) })
			g.Go(func() error { return srv.Janitor(gctx, janitorInterval(cfg.Server.SessionTTL.Duration())) })
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	return cmd
}

// janitorInterval sweeps a few times per session lifetime.
func janitorInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return max(ttl/4, time.Second)
}
