// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package access provides service-scoped row-level authorization.
//
// Effective access to a key or translation is inherited through the
// ownership chain (translation -> key -> service): membership in the owning
// service's owners set grants full access regardless of role, and anything
// else falls back to the pure role policy in the identity package.
// Resources with no owning service (legacy/common data) are role-gated
// only.
package access

import (
	"context"
	"errors"
)

// Kind identifies the resource type an authorization check targets.
type Kind string

// Resource kinds participating in the ownership chain.
const (
	KindService     Kind = "service"
	KindKey         Kind = "key"
	KindTranslation Kind = "translation"
)

// ResourceRef identifies a single resource for a point authorization check.
type ResourceRef struct {
	Kind Kind
	ID   string
}

// ServiceRef builds a ResourceRef for a service.
func ServiceRef(id string) ResourceRef { return ResourceRef{Kind: KindService, ID: id} }

// KeyRef builds a ResourceRef for a key.
func KeyRef(id string) ResourceRef { return ResourceRef{Kind: KindKey, ID: id} }

// TranslationRef builds a ResourceRef for a translation.
func TranslationRef(id string) ResourceRef { return ResourceRef{Kind: KindTranslation, ID: id} }

// ErrNotFound is returned by OwnershipResolver implementations when the
// referenced resource does not exist. CanAccess maps it to a plain deny so
// callers cannot distinguish "forbidden" from "absent".
var ErrNotFound = errors.New("resource not found")

// Ownership is the result of walking a resource's ownership chain.
// ServiceID is empty when the chain terminates without a service.
type Ownership struct {
	ServiceID string
	Owners    []string
}

// HasOwner reports whether subjectID is a member of the owners set.
func (o Ownership) HasOwner(subjectID string) bool {
	if o.ServiceID == "" || subjectID == "" {
		return false
	}
	for _, owner := range o.Owners {
		if owner == subjectID {
			return true
		}
	}
	return false
}

// OwnershipResolver walks a resource's ownership chain.
type OwnershipResolver interface {
	// ResolveOwnership resolves the owning service for ref, using at most
	// one join per hop. Returns ErrNotFound when ref does not exist.
	ResolveOwnership(ctx context.Context, ref ResourceRef) (Ownership, error)

	// ListOwnedServiceIDs returns the ids of all services whose owners set
	// contains subjectID.
	ListOwnedServiceIDs(ctx context.Context, subjectID string) ([]string, error)
}
