// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/store"
)

// ReleaseBundleRepository implements catalog.ReleaseBundleRepository.
// Bundles are insert-only; there are no update or delete statements.
type ReleaseBundleRepository struct {
	db *store.DB
}

// NewReleaseBundleRepository creates a ReleaseBundleRepository.
func NewReleaseBundleRepository(db *store.DB) *ReleaseBundleRepository {
	return &ReleaseBundleRepository{db: db}
}

// Get retrieves a bundle by id.
func (r *ReleaseBundleRepository) Get(ctx context.Context, id string) (*catalog.ReleaseBundle, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT id, service_id, name, locales, created_by, created_at
		FROM release_bundles WHERE id = $1
	`, id)
	rb, err := scanBundle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("BUNDLE_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get release bundle").With("id", id).Wrap(err)
	}
	return rb, nil
}

// Create persists a new bundle.
func (r *ReleaseBundleRepository) Create(ctx context.Context, rb *catalog.ReleaseBundle) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO release_bundles (id, service_id, name, locales, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`, rb.ID, rb.ServiceID, rb.Name, rb.Locales, rb.CreatedBy)
	if err != nil {
		return oops.With("operation", "create release bundle").With("id", rb.ID).Wrap(err)
	}
	return nil
}

// ListByService returns bundles for a service, newest first.
func (r *ReleaseBundleRepository) ListByService(ctx context.Context, serviceID string) ([]*catalog.ReleaseBundle, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT id, service_id, name, locales, created_by, created_at
		FROM release_bundles WHERE service_id = $1
		ORDER BY created_at DESC
	`, serviceID)
	if err != nil {
		return nil, oops.With("operation", "list release bundles").
			With("service_id", serviceID).Wrap(err)
	}
	defer rows.Close()

	var bundles []*catalog.ReleaseBundle
	for rows.Next() {
		rb, err := scanBundle(rows)
		if err != nil {
			return nil, oops.With("operation", "scan release bundle").Wrap(err)
		}
		bundles = append(bundles, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate release bundles").Wrap(err)
	}
	return bundles, nil
}

func scanBundle(row pgx.Row) (*catalog.ReleaseBundle, error) {
	var rb catalog.ReleaseBundle
	err := row.Scan(&rb.ID, &rb.ServiceID, &rb.Name, &rb.Locales, &rb.CreatedBy, &rb.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rb, nil
}
