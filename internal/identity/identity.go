// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package identity defines the authenticated caller model and the pure
// role policy used by authorization.
//
// An Identity is either Authenticated (stable subject id plus a role set)
// or Anonymous. Authentication itself (JWT/OIDC verification, sessions) is
// an external collaborator; this package only consumes its output.
package identity

import (
	"sort"
	"strings"
)

// Role is a closed vocabulary of assignable roles.
type Role string

// Assignable roles, from most to least privileged.
const (
	RoleAdmin    Role = "Admin"
	RoleOwner    Role = "Owner"
	RoleEditor   Role = "Editor"
	RoleReviewer Role = "Reviewer"
	RoleViewer   Role = "Viewer"
)

// ParseRole maps a role name to a Role. Matching is case-insensitive.
// Returns ok=false for names outside the vocabulary.
func ParseRole(name string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin, true
	case "owner":
		return RoleOwner, true
	case "editor":
		return RoleEditor, true
	case "reviewer":
		return RoleReviewer, true
	case "viewer":
		return RoleViewer, true
	default:
		return "", false
	}
}

// Identity is a tagged variant: Authenticated carries a subject id and a
// role set; Anonymous carries neither. A nil or empty role slice is an
// empty set, which grants zero capability.
type Identity struct {
	subjectID     string
	roles         map[Role]struct{}
	authenticated bool
}

// Anonymous returns the unauthenticated identity.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated builds an identity for the given subject with the given
// roles. Duplicate roles collapse.
func Authenticated(subjectID string, roles ...Role) Identity {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Identity{subjectID: subjectID, roles: set, authenticated: true}
}

// FromResolver builds an identity from the raw output of an identity
// resolver: a subject id and unvalidated role names. Unknown role names
// are dropped. A nil role slice is treated as an empty set.
func FromResolver(subjectID string, roleNames []string) Identity {
	roles := make([]Role, 0, len(roleNames))
	for _, name := range roleNames {
		if r, ok := ParseRole(name); ok {
			roles = append(roles, r)
		}
	}
	return Authenticated(subjectID, roles...)
}

// IsAnonymous reports whether the identity is unauthenticated.
func (id Identity) IsAnonymous() bool {
	return !id.authenticated
}

// SubjectID returns the stable subject id, or "" for Anonymous.
func (id Identity) SubjectID() string {
	return id.subjectID
}

// HasRole reports whether the role set contains r.
func (id Identity) HasRole(r Role) bool {
	_, ok := id.roles[r]
	return ok
}

// Roles returns the role set in deterministic order.
func (id Identity) Roles() []Role {
	out := make([]Role, 0, len(id.roles))
	for r := range id.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
