// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBQuerierUsesPoolOutsideTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewDB(mock)
	mock.ExpectExec("INSERT INTO keys").WithArgs("k1").WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err = db.Querier(context.Background()).Exec(context.Background(), "INSERT INTO keys VALUES ($1)", "k1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBInTransactionCommits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO keys").WithArgs("k1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	db := NewDB(mock)
	err = db.InTransaction(context.Background(), func(ctx context.Context) error {
		_, err := db.Querier(ctx).Exec(ctx, "INSERT INTO keys VALUES ($1)", "k1")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBInTransactionRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	db := NewDB(mock)
	boom := errors.New("boom")
	err = db.InTransaction(context.Background(), func(_ context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBInTransactionNestedParticipates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// A single Begin/Commit pair despite two InTransaction calls.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE translations").WithArgs("hi").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	db := NewDB(mock)
	err = db.InTransaction(context.Background(), func(ctx context.Context) error {
		return db.InTransaction(ctx, func(ctx context.Context) error {
			_, err := db.Querier(ctx).Exec(ctx, "UPDATE translations SET value = $1", "hi")
			return err
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBInTransactionBeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	db := NewDB(mock)
	err = db.InTransaction(context.Background(), func(_ context.Context) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
