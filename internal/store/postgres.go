// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

// Package store owns database connection lifecycle and schema migrations.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Initial-connection retry bounds. Once the pool is up, individual queries
// are never retried here; that is the caller's or the driver's concern.
const (
	connectBaseDelay  = 500 * time.Millisecond
	connectMaxRetries = 5
)

// NewPool creates a pgx connection pool and verifies connectivity with a
// bounded exponential backoff. Context cancellation aborts the wait.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewExponential(connectBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}
