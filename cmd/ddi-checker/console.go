package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ddi-checker/internal/console"
	"github.com/ddi-checker/internal/service"
)

func consoleCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Edit a drug list interactively and run checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("metrics-addr") {
				if m := a.config.GetConfig().Metrics; m.Enabled {
					metricsAddr = m.Addr
				}
			}
			if metricsAddr != "" {
				stop := a.serveMetrics(metricsAddr)
				defer stop()
			}

			store, err := a.openArchive(ctx, false)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			client := a.client()
			suggestions, closeCache := a.suggestions(ctx, client)
			defer closeCache()

			session := service.NewSession(client, a.renderer(), store, a.logger)
			return console.New(session, suggestions, format, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

// serveMetrics exposes /metrics in the background and returns its shutdown func.
func (a *app) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.WithField("addr", addr).Info("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
}
