package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/di"
	"github.com/mikey/mail-insight/internal/factory"
	"github.com/mikey/mail-insight/internal/ports"
)

func newServeCmd(opts *di.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := di.BuildContainer(*opts)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}
			if err := bindFlags(container, cmd, map[string]string{"listen": "server.listen_address"}); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return container.Invoke(func(
				cfg *config.Config,
				server ports.Server,
				engine *factory.Engine,
				logger *zap.Logger,
			) error {
				return serve(ctx, cfg, server, engine, logger)
			})
		},
	}

	cmd.Flags().String("listen", "", "Listen address (default from server.listen_address)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, server ports.Server, engine *factory.Engine, logger *zap.Logger) error {
	defer logger.Sync()
	defer engine.Close()

	serverCfg, err := cfg.GetServer()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("Shutdown complete")
	return err
}
