// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connect creates a pgx connection pool and waits for the database to
// accept connections, retrying with fibonacci backoff for up to maxWait.
func Connect(ctx context.Context, databaseURL string, maxWait time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_FAILED").Wrap(err)
	}

	backoff := retry.WithMaxDuration(maxWait, retry.NewFibonacci(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			slog.Debug("database not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("max_wait", maxWait.String()).Wrap(err)
	}
	return pool, nil
}
