// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package postgres implements the catalog repositories over PostgreSQL.
// All repositories issue statements through the store's transaction-aware
// querier, so calls made inside store.DB.InTransaction share one
// transaction with the audit recorder.
package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// normalizeTags maps a nil tag slice to an empty one so array columns
// round-trip consistently.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
