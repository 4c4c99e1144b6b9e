// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package seed

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/audit"
	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/catalog/postgres"
	"github.com/phrasehub/phrasehub/internal/store"
)

// Actor is the subject recorded on seed audit events.
const Actor = "seed"

// Result counts what a seed run inserted and skipped.
type Result struct {
	ServicesCreated     int `json:"servicesCreated"`
	KeysCreated         int `json:"keysCreated"`
	TranslationsCreated int `json:"translationsCreated"`
	Skipped             int `json:"skipped"`
}

// Loader inserts fixtures.
type Loader struct {
	db           *store.DB
	services     catalog.ServiceRepository
	keys         catalog.KeyRepository
	translations catalog.TranslationRepository
	recorder     audit.Recorder
}

// NewLoader creates a Loader over db.
func NewLoader(db *store.DB) *Loader {
	return &Loader{
		db:           db,
		services:     postgres.NewServiceRepository(db),
		keys:         postgres.NewKeyRepository(db),
		translations: postgres.NewTranslationRepository(db),
		recorder:     audit.NewPostgresRecorder(db),
	}
}

// Apply inserts the fixture inside one transaction. Rows whose fixed id or
// unique key already exists are skipped, so a seed run is idempotent. One
// import summary event records the run.
func (l *Loader) Apply(ctx context.Context, f *Fixture) (*Result, error) {
	result := &Result{}
	err := l.db.InTransaction(ctx, func(ctx context.Context) error {
		for _, fs := range f.Services {
			if err := l.seedService(ctx, fs, result); err != nil {
				return err
			}
		}
		_, err := l.recorder.Record(ctx, audit.Entry{
			Actor:      Actor,
			Action:     audit.ActionImport,
			EntityType: catalog.EntityService,
			EntityID:   "seed",
			After:      result,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Loader) seedService(ctx context.Context, fs FixtureService, result *Result) error {
	svc := &catalog.Service{ID: fs.ID, Code: fs.Code, Name: fs.Name, Owners: fs.Owners}
	created, err := l.createService(ctx, svc)
	if err != nil {
		return err
	}
	if created {
		result.ServicesCreated++
	} else {
		slog.Info("service already seeded, skipping", "id", fs.ID, "code", fs.Code)
		result.Skipped++
	}

	for _, fk := range fs.Keys {
		serviceID := fs.ID
		key := &catalog.Key{
			ID:        fk.ID,
			KeyName:   fk.KeyName,
			ServiceID: &serviceID,
			Tags:      fk.Tags,
			Status:    statusOrDraft(fk.Status),
		}
		created, err := l.createKey(ctx, key)
		if err != nil {
			return err
		}
		if created {
			result.KeysCreated++
		} else {
			result.Skipped++
		}

		for _, ft := range fk.Translations {
			tr := &catalog.Translation{
				ID:     ft.ID,
				KeyID:  fk.ID,
				Locale: ft.Locale,
				Value:  ft.Value,
				Status: statusOrDraft(ft.Status),
			}
			created, err := l.createTranslation(ctx, tr)
			if err != nil {
				return err
			}
			if created {
				result.TranslationsCreated++
			} else {
				result.Skipped++
			}
		}
	}
	return nil
}

// createService inserts unless the row already exists. PostgreSQL aborts
// the enclosing transaction on a constraint violation, so existence is
// checked first instead of relying on the error.
func (l *Loader) createService(ctx context.Context, svc *catalog.Service) (bool, error) {
	if _, err := l.services.Get(ctx, svc.ID); err == nil {
		return false, nil
	}
	if err := l.services.Create(ctx, svc); err != nil {
		return false, oops.Code("SEED_FAILED").With("service_id", svc.ID).Wrap(err)
	}
	return true, nil
}

func (l *Loader) createKey(ctx context.Context, key *catalog.Key) (bool, error) {
	if _, err := l.keys.Get(ctx, key.ID); err == nil {
		return false, nil
	}
	if err := l.keys.Create(ctx, key); err != nil {
		return false, oops.Code("SEED_FAILED").With("key_id", key.ID).Wrap(err)
	}
	return true, nil
}

func (l *Loader) createTranslation(ctx context.Context, tr *catalog.Translation) (bool, error) {
	if _, err := l.translations.Get(ctx, tr.ID); err == nil {
		return false, nil
	}
	if err := l.translations.Create(ctx, tr); err != nil {
		return false, oops.Code("SEED_FAILED").With("translation_id", tr.ID).Wrap(err)
	}
	return true, nil
}

func statusOrDraft(s string) catalog.Status {
	if s == "" {
		return catalog.StatusDraft
	}
	return catalog.Status(s)
}
