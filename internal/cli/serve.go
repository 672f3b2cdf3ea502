package cli

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/textops/observe"
	"github.com/jonwraymond/textops/server"
)

func newServeCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen.Addr = listen
			}
			if cfg.Observe.Version == "dev" || cfg.Observe.Version == "" {
				cfg.Observe.Version = Version
			}

			obs, err := observe.NewObserver(ctx, cfg.Observe)
			if err != nil {
				return err
			}
			defer func() { _ = obs.Shutdown(context.WithoutCancel(ctx)) }()
			logger := obs.Logger()

			srv, err := server.Build(ctx, cfg, nil, obs)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			ln, err := net.Listen("tcp", cfg.Listen.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Listen.Addr, err)
			}
			logger.Info(ctx, "textopsd listening",
				observe.Field{Key: "addr", Value: ln.Addr().String()},
				observe.Field{Key: "store", Value: cfg.Store.Backend},
				observe.Field{Key: "failure_policy", Value: cfg.Store.Policy().String()},
				observe.Field{Key: "auth", Value: cfg.Auth.Enabled},
			)

			err = srv.Serve(ctx, ln)
			logger.Info(ctx, "textopsd stopped")
			return err
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overriding listen.addr")
	return cmd
}
