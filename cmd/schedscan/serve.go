package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	appLog "schedscan/internal/log"
	"schedscan/internal/metrics"
	"schedscan/internal/schedule"
	"schedscan/internal/source"
	"schedscan/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh configured sources on a schedule and serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// CLI --listen overrides config file listen if provided.
		if serveListen != "" {
			cfg.Listen = serveListen
		}

		sources := source.FromConfig(cfg.Sources)
		appLog.Info("schedscan starting",
			"version", version,
			"listen", cfg.Listen,
			"timezone", cfg.Timezone,
			"refresh", cfg.RefreshCron,
			"source_count", len(sources),
		)

		m := metrics.New()
		store := schedule.NewStore()
		refresher := schedule.NewRefresher(source.NewLoaderFromConfig(cfg), store, m, sources)

		if err := refresher.Start(cfg.RefreshCron); err != nil {
			return err
		}
		defer refresher.Stop()

		// Initial refresh runs in the background so the API is reachable at once.
		go func() {
			if err := refresher.RefreshAll(ctx); err != nil && ctx.Err() == nil && !errors.Is(err, schedule.ErrRefreshInProgress) {
				appLog.Error("initial refresh failed", err)
			}
		}()

		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           web.NewServer(cfg, store, refresher, m).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return eris.Wrap(err, "server listen")
			}
			return nil
		case <-ctx.Done():
		}

		appLog.Info("signal received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		appLog.Info("schedscan exiting")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
	rootCmd.AddCommand(serveCmd)
}
