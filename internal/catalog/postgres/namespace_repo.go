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

// NamespaceRepository implements catalog.NamespaceRepository.
type NamespaceRepository struct {
	db *store.DB
}

// NewNamespaceRepository creates a NamespaceRepository.
func NewNamespaceRepository(db *store.DB) *NamespaceRepository {
	return &NamespaceRepository{db: db}
}

// Get retrieves a namespace by id.
func (r *NamespaceRepository) Get(ctx context.Context, id string) (*catalog.Namespace, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT id, service_id, name, created_at FROM namespaces WHERE id = $1
	`, id)
	ns, err := scanNamespace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NAMESPACE_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get namespace").With("id", id).Wrap(err)
	}
	return ns, nil
}

// Create persists a new namespace.
func (r *NamespaceRepository) Create(ctx context.Context, ns *catalog.Namespace) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO namespaces (id, service_id, name) VALUES ($1, $2, $3)
	`, ns.ID, ns.ServiceID, ns.Name)
	if err != nil {
		return oops.With("operation", "create namespace").With("id", ns.ID).Wrap(err)
	}
	return nil
}

// ListByService returns namespaces for a service, ordered by name. A nil
// serviceID lists the common scope.
func (r *NamespaceRepository) ListByService(ctx context.Context, serviceID *string) ([]*catalog.Namespace, error) {
	query := `SELECT id, service_id, name, created_at FROM namespaces WHERE service_id = $1 ORDER BY name`
	args := []any{serviceID}
	if serviceID == nil {
		query = `SELECT id, service_id, name, created_at FROM namespaces WHERE service_id IS NULL ORDER BY name`
		args = nil
	}

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, oops.With("operation", "list namespaces").Wrap(err)
	}
	defer rows.Close()

	var namespaces []*catalog.Namespace
	for rows.Next() {
		ns, err := scanNamespace(rows)
		if err != nil {
			return nil, oops.With("operation", "scan namespace").Wrap(err)
		}
		namespaces = append(namespaces, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate namespaces").Wrap(err)
	}
	return namespaces, nil
}

func scanNamespace(row pgx.Row) (*catalog.Namespace, error) {
	var ns catalog.Namespace
	err := row.Scan(&ns.ID, &ns.ServiceID, &ns.Name, &ns.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ns, nil
}
