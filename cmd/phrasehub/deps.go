// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/access"
	"github.com/phrasehub/phrasehub/internal/audit"
	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/catalog/postgres"
	"github.com/phrasehub/phrasehub/internal/config"
	"github.com/phrasehub/phrasehub/internal/exchange"
	"github.com/phrasehub/phrasehub/internal/store"
)

// app holds the wired dependency graph shared by subcommands that talk to
// the database.
type app struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	db         *store.DB
	catalog    *catalog.Catalog
	reconciler *exchange.Reconciler
	events     *audit.Reader
	services   catalog.ServiceRepository
}

// newApp loads configuration, connects to PostgreSQL, and wires the
// repositories, access resolver, audit recorder, and reconciler.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireDatabaseURL(); err != nil {
		return nil, err
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	db := store.NewDB(pool)

	resolver := access.NewResolver(postgres.NewOwnershipResolver(db))
	recorder := audit.NewPostgresRecorder(db)

	services := postgres.NewServiceRepository(db)
	keys := postgres.NewKeyRepository(db)
	translations := postgres.NewTranslationRepository(db)

	cat := catalog.New(catalog.Deps{
		Tx:           db,
		Services:     services,
		Namespaces:   postgres.NewNamespaceRepository(db),
		Keys:         keys,
		Translations: translations,
		Bundles:      postgres.NewReleaseBundleRepository(db),
		Resolver:     resolver,
		Recorder:     recorder,
	})

	rec := exchange.New(exchange.Deps{
		Tx:           db,
		Services:     services,
		Keys:         keys,
		Translations: translations,
		Resolver:     resolver,
		Recorder:     recorder,
	})

	redactCfg := audit.DefaultConfig()
	redactCfg.MaxValueLength = cfg.RedactionMaxChars
	redactor, err := audit.NewRedactor(redactCfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		pool:       pool,
		db:         db,
		catalog:    cat,
		reconciler: rec,
		events:     audit.NewReader(db, redactor),
		services:   services,
	}, nil
}

// Close releases the database pool.
func (a *app) Close() {
	a.pool.Close()
}

// resolveServiceID maps a service code to its id.
func (a *app) resolveServiceID(ctx context.Context, code string) (string, error) {
	svc, err := a.services.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	return svc.ID, nil
}
