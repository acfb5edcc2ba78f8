package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	httpadapter "github.com/unifecaf/triagebot/pkg/adapters/http"
	"github.com/unifecaf/triagebot/pkg/catalog"
	"github.com/unifecaf/triagebot/pkg/observability"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	Long: `Starts the assistant behind a REST API (/v1/messages, /v1/courses,
/v1/sessions/{userID}/restart), a websocket endpoint (/ws/{userID}),
/health and /metrics.

The session sweeper and the catalog watcher run alongside the server when
enabled in the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		a, err := build(ctx, cfg, logger, metrics.Hooks())
		if err != nil {
			return err
		}
		defer a.Close()

		opts := []httpadapter.Option{
			httpadapter.WithLogger(logger),
			httpadapter.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		}
		if cfg.HTTP.Metrics {
			opts = append(opts, httpadapter.WithMetrics(observability.Handler(reg)))
		}
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpadapter.NewHandler(a.assistant, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Server listening", "address", srv.Addr, "store", cfg.Session.Store)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("Server stopped gracefully")
			return nil
		})
		if cfg.Session.SweepInterval > 0 {
			g.Go(func() error {
				return a.assistant.Manager().RunSweeper(gctx, cfg.Session.SweepInterval)
			})
		}
		if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
			g.Go(func() error {
				return a.catalog.Follow(gctx, catalog.NewFileWatcher(cfg.Catalog.Path, cfg.Catalog.Debounce, logger))
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
