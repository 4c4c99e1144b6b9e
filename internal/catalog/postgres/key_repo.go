// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/access"
	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/store"
)

const keyColumns = `id, key_name, service_id, namespace_id, tags, status, created_at, updated_at`

// KeyRepository implements catalog.KeyRepository.
type KeyRepository struct {
	db *store.DB
}

// NewKeyRepository creates a KeyRepository.
func NewKeyRepository(db *store.DB) *KeyRepository {
	return &KeyRepository{db: db}
}

// Get retrieves a key by id.
func (r *KeyRepository) Get(ctx context.Context, id string) (*catalog.Key, error) {
	row := r.db.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM keys WHERE id = $1`, keyColumns), id)
	key, err := scanKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("KEY_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get key").With("id", id).Wrap(err)
	}
	return key, nil
}

// Create persists a new key.
func (r *KeyRepository) Create(ctx context.Context, key *catalog.Key) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO keys (id, key_name, service_id, namespace_id, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, key.ID, key.KeyName, key.ServiceID, key.NamespaceID, normalizeTags(key.Tags), key.Status)
	if err != nil {
		return oops.With("operation", "create key").With("id", key.ID).Wrap(err)
	}
	return nil
}

// Update modifies an existing key.
func (r *KeyRepository) Update(ctx context.Context, key *catalog.Key) error {
	result, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE keys SET key_name = $2, namespace_id = $3, tags = $4, status = $5, updated_at = now()
		WHERE id = $1
	`, key.ID, key.KeyName, key.NamespaceID, normalizeTags(key.Tags), key.Status)
	if err != nil {
		return oops.With("operation", "update key").With("id", key.ID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("KEY_NOT_FOUND").With("id", key.ID).Wrap(catalog.ErrNotFound)
	}
	return nil
}

// Delete removes a key by id. CASCADE removes its translations.
func (r *KeyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM keys WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "delete key").With("id", id).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("KEY_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	return nil
}

// List returns keys matching opts that the access filter admits, ordered
// by key name. The filter applies to the row's service_id, so keys with a
// NULL service_id pass only an unrestricted filter.
func (r *KeyRepository) List(ctx context.Context, opts catalog.ListKeysOptions, filter access.Filter) ([]*catalog.Key, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.ServiceID != nil {
		conditions = append(conditions, "service_id = "+arg(*opts.ServiceID))
	}
	if opts.NamespaceID != nil {
		conditions = append(conditions, "namespace_id = "+arg(*opts.NamespaceID))
	}
	if opts.Status != "" {
		conditions = append(conditions, "status = "+arg(opts.Status))
	}
	if opts.Tag != "" {
		conditions = append(conditions, arg(opts.Tag)+" = ANY(tags)")
	}

	clause, filterArgs := filter.SQL("service_id", len(args)+1)
	conditions = append(conditions, clause)
	args = append(args, filterArgs...)

	query := fmt.Sprintf(`SELECT %s FROM keys WHERE %s ORDER BY key_name`,
		keyColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, oops.With("operation", "list keys").Wrap(err)
	}
	defer rows.Close()

	var keys []*catalog.Key
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, oops.With("operation", "scan key").Wrap(err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate keys").Wrap(err)
	}
	return keys, nil
}

func scanKey(row pgx.Row) (*catalog.Key, error) {
	var key catalog.Key
	err := row.Scan(&key.ID, &key.KeyName, &key.ServiceID, &key.NamespaceID,
		&key.Tags, &key.Status, &key.CreatedAt, &key.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &key, nil
}
