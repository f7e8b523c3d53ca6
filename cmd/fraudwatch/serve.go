package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/fraudwatch/internal/core"
	"github.com/JonMunkholm/fraudwatch/internal/logging"
	"github.com/JonMunkholm/fraudwatch/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the report editor web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Info("configuration loaded",
				"port", cfg.Server.Port,
				"pdf_engine", cfg.PDF.Engine,
				"delivery_url", cfg.Delivery.BaseURL,
				"delivery_max_concurrent", cfg.Delivery.MaxConcurrent,
				"rate_limit_enabled", cfg.Rate.Enabled,
			)
			slog.Info("sections registered", "count", len(core.Sections()))

			service, err := newService(cfg)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), service, web.NewServer(service, cfg), cfg.Server.ShutdownTimeout, core.SweepConfig{
				MaxIdle:       cfg.Session.MaxIdle,
				CheckInterval: cfg.Session.SweepInterval,
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides SERVER_PORT)")
	return cmd
}

// serve runs the HTTP server and the session sweeper until a signal arrives
// or the server fails, then drains in-flight deliveries and shuts down.
func serve(ctx context.Context, service *core.Service, server *web.Server, shutdownTimeout time.Duration, sweep core.SweepConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		service.StartSessionSweeper(gctx, sweep)
		return nil
	})

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if status := service.DeliveryStatus(); status.Email+status.PDF > 0 {
			slog.Info("waiting for deliveries to complete", "email", status.Email, "pdf", status.PDF)
			if err := service.WaitForDeliveries(shutdownCtx); err != nil {
				slog.Warn("deliveries did not complete in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	slog.Info("server stopped")
	return err
}
