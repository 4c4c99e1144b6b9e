// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/access"
	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/store"
)

// serviceColumns is the shared column list for SELECT queries.
const serviceColumns = `id, code, name, owners, created_at, updated_at`

// ServiceRepository implements catalog.ServiceRepository.
type ServiceRepository struct {
	db *store.DB
}

// NewServiceRepository creates a ServiceRepository.
func NewServiceRepository(db *store.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Get retrieves a service by id.
func (r *ServiceRepository) Get(ctx context.Context, id string) (*catalog.Service, error) {
	row := r.db.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM services WHERE id = $1`, serviceColumns), id)
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SERVICE_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get service").With("id", id).Wrap(err)
	}
	return svc, nil
}

// GetByCode retrieves a service by its unique code.
func (r *ServiceRepository) GetByCode(ctx context.Context, code string) (*catalog.Service, error) {
	row := r.db.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM services WHERE code = $1`, serviceColumns), code)
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SERVICE_NOT_FOUND").With("code", code).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get service by code").With("code", code).Wrap(err)
	}
	return svc, nil
}

// Create persists a new service.
func (r *ServiceRepository) Create(ctx context.Context, svc *catalog.Service) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO services (id, code, name, owners)
		VALUES ($1, $2, $3, $4)
	`, svc.ID, svc.Code, svc.Name, normalizeTags(svc.Owners))
	if err != nil {
		return oops.With("operation", "create service").With("id", svc.ID).Wrap(err)
	}
	return nil
}

// Update modifies an existing service.
func (r *ServiceRepository) Update(ctx context.Context, svc *catalog.Service) error {
	result, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE services SET code = $2, name = $3, owners = $4, updated_at = now()
		WHERE id = $1
	`, svc.ID, svc.Code, svc.Name, normalizeTags(svc.Owners))
	if err != nil {
		return oops.With("operation", "update service").With("id", svc.ID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SERVICE_NOT_FOUND").With("id", svc.ID).Wrap(catalog.ErrNotFound)
	}
	return nil
}

// Delete removes a service by id. CASCADE removes namespaces, keys, and
// translations beneath it.
func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "delete service").With("id", id).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SERVICE_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	return nil
}

// List returns services admitted by the access filter, ordered by code.
func (r *ServiceRepository) List(ctx context.Context, filter access.Filter) ([]*catalog.Service, error) {
	clause, args := filter.SQL("id", 1)
	query := fmt.Sprintf(`SELECT %s FROM services WHERE %s ORDER BY code`, serviceColumns, clause)

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, oops.With("operation", "list services").Wrap(err)
	}
	defer rows.Close()

	var services []*catalog.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, oops.With("operation", "scan service").Wrap(err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate services").Wrap(err)
	}
	return services, nil
}

// scanService scans a row into a Service.
func scanService(row pgx.Row) (*catalog.Service, error) {
	var svc catalog.Service
	err := row.Scan(&svc.ID, &svc.Code, &svc.Name, &svc.Owners, &svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}
