// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/store"
)

const translationColumns = `id, key_id, locale, value, status, version, checksum, created_at, updated_at`

// TranslationRepository implements catalog.TranslationRepository.
type TranslationRepository struct {
	db *store.DB
}

// NewTranslationRepository creates a TranslationRepository.
func NewTranslationRepository(db *store.DB) *TranslationRepository {
	return &TranslationRepository{db: db}
}

// Get retrieves a translation by id.
func (r *TranslationRepository) Get(ctx context.Context, id string) (*catalog.Translation, error) {
	row := r.db.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM translations WHERE id = $1`, translationColumns), id)
	tr, err := scanTranslation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TRANSLATION_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get translation").With("id", id).Wrap(err)
	}
	return tr, nil
}

// GetByKeyLocale retrieves the translation for (keyID, locale).
func (r *TranslationRepository) GetByKeyLocale(ctx context.Context, keyID, locale string) (*catalog.Translation, error) {
	row := r.db.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM translations WHERE key_id = $1 AND locale = $2`, translationColumns),
		keyID, locale)
	tr, err := scanTranslation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TRANSLATION_NOT_FOUND").
			With("key_id", keyID).With("locale", locale).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get translation by key/locale").
			With("key_id", keyID).With("locale", locale).Wrap(err)
	}
	return tr, nil
}

// ListByKey returns all translations under a key, ordered by locale.
func (r *TranslationRepository) ListByKey(ctx context.Context, keyID string) ([]*catalog.Translation, error) {
	rows, err := r.db.Querier(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM translations WHERE key_id = $1 ORDER BY locale`, translationColumns),
		keyID)
	if err != nil {
		return nil, oops.With("operation", "list translations by key").With("key_id", keyID).Wrap(err)
	}
	return collectTranslations(rows)
}

// ListByService returns all translations under keys of a service, ordered
// by key id then locale.
func (r *TranslationRepository) ListByService(ctx context.Context, serviceID string) ([]*catalog.Translation, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT t.id, t.key_id, t.locale, t.value, t.status, t.version, t.checksum, t.created_at, t.updated_at
		FROM translations t
		JOIN keys k ON t.key_id = k.id
		WHERE k.service_id = $1
		ORDER BY t.key_id, t.locale
	`, serviceID)
	if err != nil {
		return nil, oops.With("operation", "list translations by service").
			With("service_id", serviceID).Wrap(err)
	}
	return collectTranslations(rows)
}

// Create persists a new translation at version 1 with a computed checksum.
func (r *TranslationRepository) Create(ctx context.Context, tr *catalog.Translation) error {
	tr.Version = 1
	tr.Checksum = catalog.ValueChecksum(tr.Value)
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO translations (id, key_id, locale, value, status, version, checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tr.ID, tr.KeyID, tr.Locale, tr.Value, tr.Status, tr.Version, tr.Checksum)
	if err != nil {
		return oops.With("operation", "create translation").With("id", tr.ID).Wrap(err)
	}
	return nil
}

// Update modifies an existing translation. The version bump happens in the
// database so concurrent writers each observe an increment of exactly one.
func (r *TranslationRepository) Update(ctx context.Context, tr *catalog.Translation) error {
	tr.Checksum = catalog.ValueChecksum(tr.Value)
	row := r.db.Querier(ctx).QueryRow(ctx, `
		UPDATE translations SET value = $2, status = $3, checksum = $4,
			version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING version
	`, tr.ID, tr.Value, tr.Status, tr.Checksum)
	err := row.Scan(&tr.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("TRANSLATION_NOT_FOUND").With("id", tr.ID).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return oops.With("operation", "update translation").With("id", tr.ID).Wrap(err)
	}
	return nil
}

// Delete removes a translation by id.
func (r *TranslationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM translations WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "delete translation").With("id", id).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TRANSLATION_NOT_FOUND").With("id", id).Wrap(catalog.ErrNotFound)
	}
	return nil
}

func collectTranslations(rows pgx.Rows) ([]*catalog.Translation, error) {
	defer rows.Close()

	var translations []*catalog.Translation
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, oops.With("operation", "scan translation").Wrap(err)
		}
		translations = append(translations, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate translations").Wrap(err)
	}
	return translations, nil
}

func scanTranslation(row pgx.Row) (*catalog.Translation, error) {
	var tr catalog.Translation
	err := row.Scan(&tr.ID, &tr.KeyID, &tr.Locale, &tr.Value, &tr.Status,
		&tr.Version, &tr.Checksum, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}
