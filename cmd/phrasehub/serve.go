// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/observability"
)

const serveShutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and health endpoints",
		Long: `Runs the observability HTTP server until interrupted. Exposes
Prometheus metrics on /metrics and Kubernetes-style probes on
/healthz/liveness and /healthz/readiness; readiness is backed by a
database ping.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := observability.NewServer(a.cfg.MetricsAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return a.db.Ping(pingCtx) == nil
	})

	errCh, err := srv.Start()
	if err != nil {
		return err
	}
	cmd.Printf("Serving metrics on %s\n", srv.Addr())

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case serveErr := <-errCh:
		if serveErr != nil {
			return serveErr
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
