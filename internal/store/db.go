// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package store provides database access: pool construction, the shared
// transaction scope, and schema migrations.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// Querier abstracts query execution for both a connection pool and an open
// transaction. Repositories issue all statements through a Querier so that
// audit appends and business writes can share one transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the subset of pgxpool.Pool the store needs. pgxmock's pool
// interface satisfies it for unit tests.
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// txKey carries the active transaction through context.
type txKey struct{}

// DB is the explicitly passed database handle. It routes statements to the
// transaction stored in context when one is active, and to the pool
// otherwise.
type DB struct {
	pool Pool
}

// NewDB wraps a connection pool.
func NewDB(pool Pool) *DB {
	return &DB{pool: pool}
}

// Querier returns the active transaction from ctx if present, else the
// pool.
func (d *DB) Querier(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return d.pool
}

// InTransaction begins a transaction, stores it in context, and calls fn.
// If fn returns nil the transaction is committed, otherwise it is rolled
// back. A nested call participates in the enclosing transaction.
func (d *DB) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// Ping verifies database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

// Close releases the underlying pool.
func (d *DB) Close() {
	d.pool.Close()
}
