package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/onboard/internal/cli"
	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/internal/logging"
	api "github.com/aretw0/onboard/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wizard HTTP API",
	Long: `Serves the wizard over a JSON API with per-session server-sent events,
image previews and a Prometheus /metrics endpoint on a separate address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		logger := logging.NewJSON(os.Stderr, logging.ParseLevel(cfg.LogLevel))

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Stop()

		a, err := build(sc, cfg, logger, modeServe)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr: cfg.Addr,
			Handler: api.NewHandler(a.service,
				api.WithLogger(logger),
				api.WithStreams(a.streams),
				api.WithRedactor(a.redactor),
				api.WithPreviews(a.previews),
				api.WithMaxUploadBytes(cfg.MaxUploadBytes),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}
		metricsSrv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(sc)
		g.Go(func() error {
			logger.Info("serving wizard API", "addr", srv.Addr, "store", cfg.Store)
			return listen(srv)
		})
		g.Go(func() error {
			logger.Info("serving metrics", "addr", metricsSrv.Addr)
			return listen(metricsSrv)
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("shutting down", "signal", fmt.Sprint(sc.Signal()))

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err := errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
			if waitErr := a.service.Wait(shutdownCtx); waitErr != nil {
				logger.Warn("submissions still in flight at shutdown", "err", waitErr)
			}
			return err
		})
		return g.Wait()
	},
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve on %s: %w", srv.Addr, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address of the wizard API (default :8080)")
	serveCmd.Flags().String("metrics-addr", "", "Address of the metrics endpoint (default :2112)")
	serveCmd.Flags().Int64("max-upload-bytes", 0, "Largest accepted attachment in bytes")
}
