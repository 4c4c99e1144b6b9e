// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package catalog

import (
	"context"

	"github.com/phrasehub/phrasehub/internal/access"
)

// ServiceRepository manages service persistence.
type ServiceRepository interface {
	// Get retrieves a service by id.
	Get(ctx context.Context, id string) (*Service, error)

	// GetByCode retrieves a service by its unique code.
	GetByCode(ctx context.Context, code string) (*Service, error)

	// Create persists a new service.
	Create(ctx context.Context, svc *Service) error

	// Update modifies an existing service.
	Update(ctx context.Context, svc *Service) error

	// Delete removes a service by id.
	Delete(ctx context.Context, id string) error

	// List returns services admitted by the access filter, ordered by code.
	List(ctx context.Context, filter access.Filter) ([]*Service, error)
}

// NamespaceRepository manages namespace persistence.
type NamespaceRepository interface {
	// Get retrieves a namespace by id.
	Get(ctx context.Context, id string) (*Namespace, error)

	// Create persists a new namespace.
	Create(ctx context.Context, ns *Namespace) error

	// ListByService returns namespaces for a service. A nil serviceID lists
	// the common scope.
	ListByService(ctx context.Context, serviceID *string) ([]*Namespace, error)
}

// ListKeysOptions narrows a key list query. Zero values mean no filter.
type ListKeysOptions struct {
	ServiceID   *string
	NamespaceID *string
	Status      Status
	Tag         string
}

// KeyRepository manages key persistence.
type KeyRepository interface {
	// Get retrieves a key by id.
	Get(ctx context.Context, id string) (*Key, error)

	// Create persists a new key.
	Create(ctx context.Context, key *Key) error

	// Update modifies an existing key.
	Update(ctx context.Context, key *Key) error

	// Delete removes a key by id along with its translations.
	Delete(ctx context.Context, id string) error

	// List returns keys matching opts that the access filter admits,
	// ordered by key name.
	List(ctx context.Context, opts ListKeysOptions, filter access.Filter) ([]*Key, error)
}

// TranslationRepository manages translation persistence.
type TranslationRepository interface {
	// Get retrieves a translation by id.
	Get(ctx context.Context, id string) (*Translation, error)

	// GetByKeyLocale retrieves the translation for (keyID, locale).
	GetByKeyLocale(ctx context.Context, keyID, locale string) (*Translation, error)

	// ListByKey returns all translations under a key, ordered by locale.
	ListByKey(ctx context.Context, keyID string) ([]*Translation, error)

	// ListByService returns all translations under keys of a service,
	// ordered by key id then locale.
	ListByService(ctx context.Context, serviceID string) ([]*Translation, error)

	// Create persists a new translation at version 1.
	Create(ctx context.Context, tr *Translation) error

	// Update modifies an existing translation, bumping its version by one.
	Update(ctx context.Context, tr *Translation) error

	// Delete removes a translation by id.
	Delete(ctx context.Context, id string) error
}

// ReleaseBundleRepository manages release bundle persistence. Bundles are
// insert-only.
type ReleaseBundleRepository interface {
	// Get retrieves a bundle by id.
	Get(ctx context.Context, id string) (*ReleaseBundle, error)

	// Create persists a new bundle.
	Create(ctx context.Context, rb *ReleaseBundle) error

	// ListByService returns bundles for a service, newest first.
	ListByService(ctx context.Context, serviceID string) ([]*ReleaseBundle, error)
}

// Transactor runs a function inside a database transaction. Repository and
// audit writes issued through the transaction-scoped context commit or
// roll back together.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
