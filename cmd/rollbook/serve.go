// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rollbook/rollbook/internal/auth"
	"github.com/rollbook/rollbook/internal/logging"
	"github.com/rollbook/rollbook/internal/observability"
	"github.com/rollbook/rollbook/internal/store"
)

const readinessPingTimeout = 2 * time.Second

// NewServeCmd creates the serve subcommand. Serve hosts the observability
// endpoints and keeps the database pool warm; the REST routing layer runs
// elsewhere and consumes this module as a library.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the credential service (metrics and health endpoints)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	addConfigFlags(cmd.Flags())
	return cmd
}

func runServe(ctx context.Context, cfg *appConfig) error {
	logging.SetDefault("rollbook", version, cfg.Log.Format)

	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	// Fail fast on a bad hasher section rather than at first registration.
	if _, err := auth.NewHasher(cfg.hasherConfig()); err != nil {
		return err
	}

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	obs := observability.NewServer(cfg.Metrics.Addr, poolReadiness(pool))
	errCh, err := obs.Start()
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		slog.Info("shutting down")
	case serveErr, ok := <-errCh:
		if ok && serveErr != nil {
			return oops.Code("SERVE_FAILED").Wrap(serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return obs.Stop(shutdownCtx)
}

func poolReadiness(pool *pgxpool.Pool) observability.ReadinessChecker {
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), readinessPingTimeout)
		defer cancel()
		return pool.Ping(ctx) == nil
	}
}
