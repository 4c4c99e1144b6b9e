// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/access"
	"github.com/phrasehub/phrasehub/internal/store"
)

// OwnershipResolver implements access.OwnershipResolver against the
// catalog tables. Each chain walk is a single query with at most one join
// per hop: services resolve directly, keys join services, and translations
// join keys then services.
type OwnershipResolver struct {
	db *store.DB
}

// NewOwnershipResolver creates an OwnershipResolver.
func NewOwnershipResolver(db *store.DB) *OwnershipResolver {
	return &OwnershipResolver{db: db}
}

// ResolveOwnership resolves the owning service for ref. A resource whose
// chain terminates without a service (NULL service_id) yields an empty
// Ownership; a missing resource yields access.ErrNotFound.
func (r *OwnershipResolver) ResolveOwnership(ctx context.Context, ref access.ResourceRef) (access.Ownership, error) {
	var query string
	switch ref.Kind {
	case access.KindService:
		query = `SELECT id, owners FROM services WHERE id = $1`
	case access.KindKey:
		query = `
			SELECT s.id, s.owners
			FROM keys k
			LEFT JOIN services s ON k.service_id = s.id
			WHERE k.id = $1`
	case access.KindTranslation:
		query = `
			SELECT s.id, s.owners
			FROM translations t
			JOIN keys k ON t.key_id = k.id
			LEFT JOIN services s ON k.service_id = s.id
			WHERE t.id = $1`
	default:
		return access.Ownership{}, oops.Code("UNKNOWN_RESOURCE_KIND").
			With("kind", string(ref.Kind)).Errorf("unknown resource kind %q", ref.Kind)
	}

	var (
		serviceID *string
		owners    []string
	)
	err := r.db.Querier(ctx).QueryRow(ctx, query, ref.ID).Scan(&serviceID, &owners)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.Ownership{}, access.ErrNotFound
	}
	if err != nil {
		return access.Ownership{}, oops.With("operation", "resolve ownership").
			With("kind", string(ref.Kind)).With("id", ref.ID).Wrap(err)
	}
	if serviceID == nil {
		return access.Ownership{}, nil
	}
	return access.Ownership{ServiceID: *serviceID, Owners: owners}, nil
}

// ListOwnedServiceIDs returns every service id whose owners set contains
// subjectID, ordered for stable filter rendering.
func (r *OwnershipResolver) ListOwnedServiceIDs(ctx context.Context, subjectID string) ([]string, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT id FROM services WHERE $1 = ANY(owners) ORDER BY id`, subjectID)
	if err != nil {
		return nil, oops.With("operation", "list owned services").
			With("subject_id", subjectID).Wrap(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, oops.With("operation", "scan owned service id").Wrap(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate owned services").Wrap(err)
	}
	return ids, nil
}
