// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package catalog

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/access"
	"github.com/phrasehub/phrasehub/internal/audit"
	"github.com/phrasehub/phrasehub/internal/identity"
)

// AccessResolver answers point checks and builds list filters.
type AccessResolver interface {
	CanAccess(ctx context.Context, id identity.Identity, ref access.ResourceRef, perm identity.Permission) (bool, error)
	BuildFilter(ctx context.Context, id identity.Identity, perm identity.Permission) (access.Filter, error)
}

// Audit entity types as recorded on events.
const (
	EntityService       = "service"
	EntityNamespace     = "namespace"
	EntityKey           = "key"
	EntityTranslation   = "translation"
	EntityReleaseBundle = "release_bundle"
)

// Catalog exposes the authorized operations over the domain model. Every
// mutation runs as access check, write, and audit event inside a single
// transaction, so the ownership chain the check walks is the same snapshot
// the write lands on; if any step fails the whole mutation rolls back.
type Catalog struct {
	tx           Transactor
	services     ServiceRepository
	namespaces   NamespaceRepository
	keys         KeyRepository
	translations TranslationRepository
	bundles      ReleaseBundleRepository
	resolver     AccessResolver
	recorder     audit.Recorder
}

// Deps bundles the catalog's collaborators.
type Deps struct {
	Tx           Transactor
	Services     ServiceRepository
	Namespaces   NamespaceRepository
	Keys         KeyRepository
	Translations TranslationRepository
	Bundles      ReleaseBundleRepository
	Resolver     AccessResolver
	Recorder     audit.Recorder
}

// New creates a Catalog.
func New(d Deps) *Catalog {
	return &Catalog{
		tx:           d.Tx,
		services:     d.Services,
		namespaces:   d.Namespaces,
		keys:         d.Keys,
		translations: d.Translations,
		bundles:      d.Bundles,
		resolver:     d.Resolver,
		recorder:     d.Recorder,
	}
}

// requireWrite runs the point check for a write on ref and converts a
// denial into the caller-facing sentinel.
func (c *Catalog) requireWrite(ctx context.Context, id identity.Identity, ref access.ResourceRef) error {
	return c.require(ctx, id, ref, identity.PermissionWrite)
}

// requireRead runs the point check for a read on ref.
func (c *Catalog) requireRead(ctx context.Context, id identity.Identity, ref access.ResourceRef) error {
	return c.require(ctx, id, ref, identity.PermissionRead)
}

func (c *Catalog) require(ctx context.Context, id identity.Identity, ref access.ResourceRef, perm identity.Permission) error {
	if id.IsAnonymous() {
		return ErrUnauthenticated
	}
	allowed, err := c.resolver.CanAccess(ctx, id, ref, perm)
	if err != nil {
		return err
	}
	if !allowed {
		return oops.Code("PERMISSION_DENIED").
			With("subject", id.SubjectID()).
			With("kind", string(ref.Kind)).
			With("permission", string(perm)).
			Wrap(ErrPermissionDenied)
	}
	return nil
}

// requireEditorRole gates operations with no parent resource to check
// against, such as creating a service. Ownership cannot apply yet, so the
// pure role policy decides.
func requireEditorRole(id identity.Identity) error {
	if id.IsAnonymous() {
		return ErrUnauthenticated
	}
	if !identity.CanEdit(id) {
		return oops.Code("PERMISSION_DENIED").
			With("subject", id.SubjectID()).
			Wrap(ErrPermissionDenied)
	}
	return nil
}

// CreateServiceInput carries the caller-supplied fields of a new service.
type CreateServiceInput struct {
	Code   string
	Name   string
	Owners []string
}

// CreateService creates a service and audits it.
func (c *Catalog) CreateService(ctx context.Context, id identity.Identity, in CreateServiceInput) (*Service, error) {
	if err := requireEditorRole(id); err != nil {
		return nil, err
	}
	if err := ValidateServiceCode(in.Code); err != nil {
		return nil, err
	}
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}

	svc := &Service{
		ID:     ulid.Make().String(),
		Code:   in.Code,
		Name:   in.Name,
		Owners: in.Owners,
	}
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.services.Create(ctx, svc); err != nil {
			return err
		}
		_, err := c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionCreate,
			EntityType: EntityService,
			EntityID:   svc.ID,
			After:      svc,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// GetService retrieves a service the identity may read.
func (c *Catalog) GetService(ctx context.Context, id identity.Identity, serviceID string) (*Service, error) {
	if err := c.requireRead(ctx, id, access.ServiceRef(serviceID)); err != nil {
		return nil, err
	}
	return c.services.Get(ctx, serviceID)
}

// ListServices lists services visible to the identity.
func (c *Catalog) ListServices(ctx context.Context, id identity.Identity) ([]*Service, error) {
	filter, err := c.resolver.BuildFilter(ctx, id, identity.PermissionRead)
	if err != nil {
		return nil, err
	}
	return c.services.List(ctx, filter)
}

// UpdateServiceInput carries the mutable fields of a service.
type UpdateServiceInput struct {
	Name   string
	Owners []string
}

// UpdateService updates a service's name and owners set, auditing the
// before and after states.
func (c *Catalog) UpdateService(ctx context.Context, id identity.Identity, serviceID string, in UpdateServiceInput) (*Service, error) {
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}

	var updated *Service
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.ServiceRef(serviceID)); err != nil {
			return err
		}
		before, err := c.services.Get(ctx, serviceID)
		if err != nil {
			return err
		}
		after := *before
		after.Name = in.Name
		after.Owners = in.Owners
		if err := c.services.Update(ctx, &after); err != nil {
			return err
		}
		_, err = c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionUpdate,
			EntityType: EntityService,
			EntityID:   serviceID,
			Before:     before,
			After:      &after,
		})
		updated = &after
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteService deletes a service and everything beneath it.
func (c *Catalog) DeleteService(ctx context.Context, id identity.Identity, serviceID string) error {
	return c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.ServiceRef(serviceID)); err != nil {
			return err
		}
		before, err := c.services.Get(ctx, serviceID)
		if err != nil {
			return err
		}
		if err := c.services.Delete(ctx, serviceID); err != nil {
			return err
		}
		_, err = c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionDelete,
			EntityType: EntityService,
			EntityID:   serviceID,
			Before:     before,
		})
		return err
	})
}

// CreateNamespaceInput carries the caller-supplied fields of a namespace.
type CreateNamespaceInput struct {
	ServiceID *string
	Name      string
}

// CreateNamespace creates a namespace under a service, or in the common
// scope when ServiceID is nil.
func (c *Catalog) CreateNamespace(ctx context.Context, id identity.Identity, in CreateNamespaceInput) (*Namespace, error) {
	if in.ServiceID == nil {
		if err := requireEditorRole(id); err != nil {
			return nil, err
		}
	}
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}

	ns := &Namespace{
		ID:        ulid.Make().String(),
		ServiceID: in.ServiceID,
		Name:      in.Name,
	}
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if in.ServiceID != nil {
			if err := c.requireWrite(ctx, id, access.ServiceRef(*in.ServiceID)); err != nil {
				return err
			}
		}
		if err := c.namespaces.Create(ctx, ns); err != nil {
			return err
		}
		_, err := c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionCreate,
			EntityType: EntityNamespace,
			EntityID:   ns.ID,
			After:      ns,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// ListNamespaces lists namespaces under a service (or the common scope for
// a nil serviceID) when the identity may read that scope.
func (c *Catalog) ListNamespaces(ctx context.Context, id identity.Identity, serviceID *string) ([]*Namespace, error) {
	if serviceID != nil {
		if err := c.requireRead(ctx, id, access.ServiceRef(*serviceID)); err != nil {
			return nil, err
		}
	} else {
		// Common-scope namespaces are role-gated only.
		if id.IsAnonymous() {
			return nil, ErrUnauthenticated
		}
		if !identity.CanView(id) {
			return nil, oops.Code("PERMISSION_DENIED").
				With("subject", id.SubjectID()).Wrap(ErrPermissionDenied)
		}
	}
	return c.namespaces.ListByService(ctx, serviceID)
}

// CreateKeyInput carries the caller-supplied fields of a new key.
type CreateKeyInput struct {
	KeyName     string
	ServiceID   *string
	NamespaceID *string
	Tags        []string
	Status      Status
}

// CreateKey creates a key. A key with a service is authorized against that
// service; a service-less key falls back to the role policy.
func (c *Catalog) CreateKey(ctx context.Context, id identity.Identity, in CreateKeyInput) (*Key, error) {
	if in.ServiceID == nil {
		if err := requireEditorRole(id); err != nil {
			return nil, err
		}
	}
	if err := ValidateKeyName(in.KeyName); err != nil {
		return nil, err
	}
	if err := ValidateTags(in.Tags); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	key := &Key{
		ID:          ulid.Make().String(),
		KeyName:     in.KeyName,
		ServiceID:   in.ServiceID,
		NamespaceID: in.NamespaceID,
		Tags:        in.Tags,
		Status:      status,
	}
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if in.ServiceID != nil {
			if err := c.requireWrite(ctx, id, access.ServiceRef(*in.ServiceID)); err != nil {
				return err
			}
		}
		if err := c.keys.Create(ctx, key); err != nil {
			return err
		}
		_, err := c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionCreate,
			EntityType: EntityKey,
			EntityID:   key.ID,
			After:      key,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// GetKey retrieves a key the identity may read.
func (c *Catalog) GetKey(ctx context.Context, id identity.Identity, keyID string) (*Key, error) {
	if err := c.requireRead(ctx, id, access.KeyRef(keyID)); err != nil {
		return nil, err
	}
	return c.keys.Get(ctx, keyID)
}

// ListKeys lists keys matching opts that are visible to the identity. The
// access filter and the option filters compose in a single query.
func (c *Catalog) ListKeys(ctx context.Context, id identity.Identity, opts ListKeysOptions) ([]*Key, error) {
	filter, err := c.resolver.BuildFilter(ctx, id, identity.PermissionRead)
	if err != nil {
		return nil, err
	}
	return c.keys.List(ctx, opts, filter)
}

// UpdateKeyInput carries the mutable fields of a key.
type UpdateKeyInput struct {
	KeyName     string
	NamespaceID *string
	Tags        []string
	Status      Status
}

// UpdateKey updates a key, auditing before and after.
func (c *Catalog) UpdateKey(ctx context.Context, id identity.Identity, keyID string, in UpdateKeyInput) (*Key, error) {
	if err := ValidateKeyName(in.KeyName); err != nil {
		return nil, err
	}
	if err := ValidateTags(in.Tags); err != nil {
		return nil, err
	}
	if err := ValidateStatus(in.Status); err != nil {
		return nil, err
	}

	var updated *Key
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.KeyRef(keyID)); err != nil {
			return err
		}
		before, err := c.keys.Get(ctx, keyID)
		if err != nil {
			return err
		}
		after := *before
		after.KeyName = in.KeyName
		after.NamespaceID = in.NamespaceID
		after.Tags = in.Tags
		after.Status = in.Status
		if err := c.keys.Update(ctx, &after); err != nil {
			return err
		}
		_, err = c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionUpdate,
			EntityType: EntityKey,
			EntityID:   keyID,
			Before:     before,
			After:      &after,
		})
		updated = &after
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteKey deletes a key and its translations.
func (c *Catalog) DeleteKey(ctx context.Context, id identity.Identity, keyID string) error {
	return c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.KeyRef(keyID)); err != nil {
			return err
		}
		before, err := c.keys.Get(ctx, keyID)
		if err != nil {
			return err
		}
		if err := c.keys.Delete(ctx, keyID); err != nil {
			return err
		}
		_, err = c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionDelete,
			EntityType: EntityKey,
			EntityID:   keyID,
			Before:     before,
		})
		return err
	})
}

// CreateTranslationInput carries the caller-supplied fields of a new
// translation.
type CreateTranslationInput struct {
	KeyID  string
	Locale string
	Value  string
	Status Status
}

// CreateTranslation creates a translation at version 1, authorized against
// the key's ownership chain.
func (c *Catalog) CreateTranslation(ctx context.Context, id identity.Identity, in CreateTranslationInput) (*Translation, error) {
	if err := ValidateLocale(in.Locale); err != nil {
		return nil, err
	}
	if err := ValidateValue(in.Value); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	tr := &Translation{
		ID:     ulid.Make().String(),
		KeyID:  in.KeyID,
		Locale: in.Locale,
		Value:  in.Value,
		Status: status,
	}
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.KeyRef(in.KeyID)); err != nil {
			return err
		}
		if err := c.translations.Create(ctx, tr); err != nil {
			return err
		}
		_, err := c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionCreate,
			EntityType: EntityTranslation,
			EntityID:   tr.ID,
			After:      tr,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// GetTranslation retrieves a translation the identity may read.
func (c *Catalog) GetTranslation(ctx context.Context, id identity.Identity, translationID string) (*Translation, error) {
	if err := c.requireRead(ctx, id, access.TranslationRef(translationID)); err != nil {
		return nil, err
	}
	return c.translations.Get(ctx, translationID)
}

// ListTranslations lists a key's translations when the identity may read
// the key.
func (c *Catalog) ListTranslations(ctx context.Context, id identity.Identity, keyID string) ([]*Translation, error) {
	if err := c.requireRead(ctx, id, access.KeyRef(keyID)); err != nil {
		return nil, err
	}
	return c.translations.ListByKey(ctx, keyID)
}

// UpdateTranslationInput carries the mutable fields of a translation.
type UpdateTranslationInput struct {
	Value  string
	Status Status
}

// UpdateTranslation updates a translation's value and status. The version
// bumps by exactly one; concurrent writers are last-commit-wins.
func (c *Catalog) UpdateTranslation(ctx context.Context, id identity.Identity, translationID string, in UpdateTranslationInput) (*Translation, error) {
	if err := ValidateValue(in.Value); err != nil {
		return nil, err
	}
	if err := ValidateStatus(in.Status); err != nil {
		return nil, err
	}

	var updated *Translation
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.TranslationRef(translationID)); err != nil {
			return err
		}
		before, err := c.translations.Get(ctx, translationID)
		if err != nil {
			return err
		}
		after := *before
		after.Value = in.Value
		after.Status = in.Status
		if err := c.translations.Update(ctx, &after); err != nil {
			return err
		}
		_, err = c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionUpdate,
			EntityType: EntityTranslation,
			EntityID:   translationID,
			Before:     before,
			After:      &after,
		})
		updated = &after
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTranslation deletes a translation.
func (c *Catalog) DeleteTranslation(ctx context.Context, id identity.Identity, translationID string) error {
	return c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.TranslationRef(translationID)); err != nil {
			return err
		}
		before, err := c.translations.Get(ctx, translationID)
		if err != nil {
			return err
		}
		if err := c.translations.Delete(ctx, translationID); err != nil {
			return err
		}
		_, err = c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionDelete,
			EntityType: EntityTranslation,
			EntityID:   translationID,
			Before:     before,
		})
		return err
	})
}

// CreateReleaseBundleInput carries the caller-supplied fields of a bundle.
type CreateReleaseBundleInput struct {
	ServiceID string
	Name      string
	Locales   []string
}

// CreateReleaseBundle snapshots a named bundle for a service. Bundles are
// read-only once created.
func (c *Catalog) CreateReleaseBundle(ctx context.Context, id identity.Identity, in CreateReleaseBundleInput) (*ReleaseBundle, error) {
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}
	for _, locale := range in.Locales {
		if err := ValidateLocale(locale); err != nil {
			return nil, err
		}
	}

	rb := &ReleaseBundle{
		ID:        ulid.Make().String(),
		ServiceID: in.ServiceID,
		Name:      in.Name,
		Locales:   in.Locales,
		CreatedBy: id.SubjectID(),
	}
	err := c.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.requireWrite(ctx, id, access.ServiceRef(in.ServiceID)); err != nil {
			return err
		}
		if err := c.bundles.Create(ctx, rb); err != nil {
			return err
		}
		_, err := c.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionCreate,
			EntityType: EntityReleaseBundle,
			EntityID:   rb.ID,
			After:      rb,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return rb, nil
}

// ListReleaseBundles lists a service's bundles when the identity may read
// the service.
func (c *Catalog) ListReleaseBundles(ctx context.Context, id identity.Identity, serviceID string) ([]*ReleaseBundle, error) {
	if err := c.requireRead(ctx, id, access.ServiceRef(serviceID)); err != nil {
		return nil, err
	}
	return c.bundles.ListByService(ctx, serviceID)
}
