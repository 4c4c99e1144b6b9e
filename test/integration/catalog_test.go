// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

//go:build integration

package integration

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/phrasehub/phrasehub/internal/access"
	"github.com/phrasehub/phrasehub/internal/audit"
	"github.com/phrasehub/phrasehub/internal/catalog"
	catalogpg "github.com/phrasehub/phrasehub/internal/catalog/postgres"
	"github.com/phrasehub/phrasehub/internal/exchange"
	"github.com/phrasehub/phrasehub/internal/identity"
	"github.com/phrasehub/phrasehub/internal/seed"
	"github.com/phrasehub/phrasehub/internal/store"
)

// testEnv holds all the resources needed for integration tests.
type testEnv struct {
	ctx        context.Context
	cancel     context.CancelFunc
	container  testcontainers.Container
	pool       *pgxpool.Pool
	db         *store.DB
	catalog    *catalog.Catalog
	reconciler *exchange.Reconciler
	events     *audit.Reader
}

// setupTestEnv starts PostgreSQL, runs migrations, and wires the full
// dependency graph.
func setupTestEnv() (*testEnv, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	env := &testEnv{ctx: ctx, cancel: cancel}

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("phrasehub_test"),
		postgres.WithUsername("phrasehub"),
		postgres.WithPassword("phrasehub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, err
	}
	env.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	_ = migrator.Close()

	env.pool, err = store.Connect(ctx, connStr, 30*time.Second)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	env.db = store.NewDB(env.pool)

	resolver := access.NewResolver(catalogpg.NewOwnershipResolver(env.db))
	recorder := audit.NewPostgresRecorder(env.db)
	services := catalogpg.NewServiceRepository(env.db)
	keys := catalogpg.NewKeyRepository(env.db)
	translations := catalogpg.NewTranslationRepository(env.db)

	env.catalog = catalog.New(catalog.Deps{
		Tx:           env.db,
		Services:     services,
		Namespaces:   catalogpg.NewNamespaceRepository(env.db),
		Keys:         keys,
		Translations: translations,
		Bundles:      catalogpg.NewReleaseBundleRepository(env.db),
		Resolver:     resolver,
		Recorder:     recorder,
	})
	env.reconciler = exchange.New(exchange.Deps{
		Tx:           env.db,
		Services:     services,
		Keys:         keys,
		Translations: translations,
		Resolver:     resolver,
		Recorder:     recorder,
	})

	redactor, err := audit.NewRedactor(audit.DefaultConfig())
	if err != nil {
		env.pool.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	env.events = audit.NewReader(env.db, redactor)

	return env, nil
}

// cleanup releases all test resources.
func (env *testEnv) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if env.pool != nil {
		env.pool.Close()
	}
	if env.container != nil {
		_ = env.container.Terminate(ctx)
	}
	env.cancel()
}

var _ = Describe("Catalog", func() {
	var env *testEnv

	admin := identity.Authenticated("alice", identity.RoleAdmin)
	editor := identity.Authenticated("eve", identity.RoleEditor)
	owner := identity.Authenticated("oscar", identity.RoleEditor)
	viewer := identity.Authenticated("vera", identity.RoleViewer)

	BeforeEach(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		env.cleanup()
	})

	Describe("service lifecycle", func() {
		It("creates, updates, and audits a service", func() {
			svc, err := env.catalog.CreateService(env.ctx, editor, catalog.CreateServiceInput{
				Code:   "checkout",
				Name:   "Checkout",
				Owners: []string{"oscar"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.ID).To(HaveLen(26))

			updated, err := env.catalog.UpdateService(env.ctx, owner, svc.ID, catalog.UpdateServiceInput{
				Name:   "Checkout Flow",
				Owners: []string{"oscar"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Checkout Flow"))

			events, err := env.events.List(env.ctx, audit.ListOptions{
				EntityType: "service",
				EntityID:   svc.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(2))
			Expect(events[0].Action).To(Equal(audit.ActionUpdate))
			Expect(events[0].Before).NotTo(BeNil())
			Expect(events[0].After).NotTo(BeNil())
			Expect(events[1].Action).To(Equal(audit.ActionCreate))
			Expect(events[1].Actor).To(Equal("eve"))
		})

		It("rejects duplicate service codes", func() {
			_, err := env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
				Code: "billing", Name: "Billing",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
				Code: "billing", Name: "Billing Again",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("access control", func() {
		var svcID string

		BeforeEach(func() {
			svc, err := env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
				Code:   "search",
				Name:   "Search",
				Owners: []string{"oscar"},
			})
			Expect(err).NotTo(HaveOccurred())
			svcID = svc.ID
		})

		It("denies viewers writes but allows reads", func() {
			_, err := env.catalog.UpdateService(env.ctx, viewer, svcID, catalog.UpdateServiceInput{Name: "X"})
			Expect(err).To(MatchError(catalog.ErrPermissionDenied))

			svc, err := env.catalog.GetService(env.ctx, viewer, svcID)
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.Code).To(Equal("search"))
		})

		It("rolls back a denied mutation without an audit event", func() {
			_, err := env.catalog.CreateKey(env.ctx, viewer, catalog.CreateKeyInput{
				KeyName:   "search.title",
				ServiceID: &svcID,
			})
			Expect(err).To(MatchError(catalog.ErrPermissionDenied))

			events, err := env.events.List(env.ctx, audit.ListOptions{EntityType: "key"})
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(BeEmpty())
		})

		It("scopes lists to owned services for identities without a role", func() {
			other, err := env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
				Code:   "payments",
				Name:   "Payments",
				Owners: []string{"someone-else"},
			})
			Expect(err).NotTo(HaveOccurred())

			// A role-less identity sees only what it owns; any role with
			// view capability sees everything, matching per-row decisions.
			roleless := identity.Authenticated("oscar")
			listed, err := env.catalog.ListServices(env.ctx, roleless)
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, 0, len(listed))
			for _, s := range listed {
				ids = append(ids, s.ID)
			}
			Expect(ids).To(ConsistOf(svcID))

			all, err := env.catalog.ListServices(env.ctx, viewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(all)).To(BeNumerically(">=", 2))
			allIDs := make([]string, 0, len(all))
			for _, s := range all {
				allIDs = append(allIDs, s.ID)
			}
			Expect(allIDs).To(ContainElement(other.ID))
		})
	})

	Describe("translations", func() {
		var svcID, keyID string

		BeforeEach(func() {
			svc, err := env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
				Code: "web", Name: "Web", Owners: []string{"oscar"},
			})
			Expect(err).NotTo(HaveOccurred())
			svcID = svc.ID

			key, err := env.catalog.CreateKey(env.ctx, owner, catalog.CreateKeyInput{
				KeyName:   "home.title",
				ServiceID: &svcID,
				Tags:      []string{"home"},
			})
			Expect(err).NotTo(HaveOccurred())
			keyID = key.ID
		})

		It("bumps the version by one per update", func() {
			tr, err := env.catalog.CreateTranslation(env.ctx, owner, catalog.CreateTranslationInput{
				KeyID: keyID, Locale: "en", Value: "Welcome",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Version).To(Equal(1))
			Expect(tr.Checksum).To(Equal(catalog.ValueChecksum("Welcome")))

			updated, err := env.catalog.UpdateTranslation(env.ctx, owner, tr.ID, catalog.UpdateTranslationInput{
				Value: "Welcome back", Status: catalog.StatusActive,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Version).To(Equal(2))
		})

		It("rejects unsupported locales", func() {
			_, err := env.catalog.CreateTranslation(env.ctx, owner, catalog.CreateTranslationInput{
				KeyID: keyID, Locale: "xx", Value: "?",
			})
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Exchange", func() {
	var env *testEnv

	admin := identity.Authenticated("alice", identity.RoleAdmin)

	BeforeEach(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		env.cleanup()
	})

	It("round-trips an export to an empty plan", func() {
		svc, err := env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
			Code: "mobile", Name: "Mobile",
		})
		Expect(err).NotTo(HaveOccurred())

		key, err := env.catalog.CreateKey(env.ctx, admin, catalog.CreateKeyInput{
			KeyName: "login.button", ServiceID: &svc.ID, Status: catalog.StatusActive,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.catalog.CreateTranslation(env.ctx, admin, catalog.CreateTranslationInput{
			KeyID: key.ID, Locale: "en", Value: "Sign in",
		})
		Expect(err).NotTo(HaveOccurred())

		payload, err := env.reconciler.Export(env.ctx, admin, svc.ID, exchange.ExportOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(payload.Service).To(Equal("mobile"))
		Expect(payload.Data.Keys).To(HaveLen(1))

		report, err := env.reconciler.Plan(env.ctx, admin, svc.ID, payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Empty()).To(BeTrue())
	})

	It("applies a payload and records per-write audit events", func() {
		svc, err := env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
			Code: "api", Name: "API",
		})
		Expect(err).NotTo(HaveOccurred())

		payload := &exchange.Payload{
			Service: "api",
			Locales: []string{"en", "de"},
			Data: exchange.Data{Keys: []exchange.PayloadKey{{
				ID:      "01JD000000000000000000KEY1",
				KeyName: "errors.timeout",
				Status:  "active",
				Tags:    []string{"errors"},
				Translations: []exchange.PayloadTranslation{
					{Locale: "en", Value: "Request timed out", Status: "active"},
					{Locale: "de", Value: "Zeitüberschreitung", Status: "draft"},
				},
			}}},
		}

		result, err := env.reconciler.Apply(env.ctx, admin, svc.ID, payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.KeysWritten).To(Equal(1))
		Expect(result.TranslationsWritten).To(Equal(2))

		imports, err := env.events.List(env.ctx, audit.ListOptions{Action: audit.ActionImport})
		Expect(err).NotTo(HaveOccurred())
		Expect(imports).To(HaveLen(1))

		// Re-applying the same payload is a no-op apart from the summary event.
		result, err = env.reconciler.Apply(env.ctx, admin, svc.ID, payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.KeysWritten).To(BeZero())
		Expect(result.TranslationsWritten).To(BeZero())
	})
})

var _ = Describe("Seed", func() {
	var env *testEnv

	BeforeEach(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		env.cleanup()
	})

	It("loads a fixture idempotently", func() {
		fixture := &seed.Fixture{
			Services: []seed.FixtureService{{
				ID:     "01JD0000000000000000000SVC",
				Code:   "demo",
				Name:   "Demo",
				Owners: []string{"oscar"},
				Keys: []seed.FixtureKey{{
					ID:      "01JD0000000000000000000KEY",
					KeyName: "demo.greeting",
					Status:  "active",
					Translations: []seed.FixtureTranslation{
						{ID: "01JD00000000000000000000TR", Locale: "en", Value: "Hello", Status: "active"},
					},
				}},
			}},
		}

		loader := seed.NewLoader(env.db)

		result, err := loader.Apply(env.ctx, fixture)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.ServicesCreated).To(Equal(1))
		Expect(result.KeysCreated).To(Equal(1))
		Expect(result.TranslationsCreated).To(Equal(1))

		again, err := loader.Apply(env.ctx, fixture)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.ServicesCreated).To(BeZero())
		Expect(again.Skipped).To(Equal(3))
	})
})

var _ = Describe("Audit redaction", func() {
	var env *testEnv

	admin := identity.Authenticated("alice", identity.RoleAdmin)

	BeforeEach(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		env.cleanup()
	})

	It("redacts PII in snapshots on read without altering stored rows", func() {
		svc, err := env.catalog.CreateService(env.ctx, admin, catalog.CreateServiceInput{
			Code: "support", Name: "Support",
		})
		Expect(err).NotTo(HaveOccurred())

		key, err := env.catalog.CreateKey(env.ctx, admin, catalog.CreateKeyInput{
			KeyName: "support.contact", ServiceID: &svc.ID,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.catalog.CreateTranslation(env.ctx, admin, catalog.CreateTranslationInput{
			KeyID: key.ID, Locale: "en", Value: "Contact us at help@example.com",
		})
		Expect(err).NotTo(HaveOccurred())

		events, err := env.events.List(env.ctx, audit.ListOptions{EntityType: "translation"})
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(1))

		after := string(events[0].After)
		Expect(after).To(ContainSubstring("[EMAIL_REDACTED]"))
		Expect(after).NotTo(ContainSubstring("help@example.com"))

		// The stored row keeps the original value.
		var raw string
		err = env.pool.QueryRow(env.ctx,
			`SELECT after::text FROM events WHERE entity_type = 'translation'`).Scan(&raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(ContainSubstring("help@example.com"))
		Expect(strings.Contains(raw, "[EMAIL_REDACTED]")).To(BeFalse())
	})
})
