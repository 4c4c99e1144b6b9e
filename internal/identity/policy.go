// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package identity

// Permission is the capability requested against a resource.
type Permission string

// Requested permissions.
const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Role policy: pure, total functions over the role set. No I/O, no error
// path other than false. An empty role set has no capability, including
// view.

// IsAdmin reports whether the identity holds the Admin role.
func IsAdmin(id Identity) bool {
	return id.HasRole(RoleAdmin)
}

// CanEdit reports whether the identity may perform writes under the role
// policy: Admin, Owner, or Editor.
func CanEdit(id Identity) bool {
	return id.HasRole(RoleAdmin) || id.HasRole(RoleOwner) || id.HasRole(RoleEditor)
}

// CanReview reports whether the identity may review: anything edit-capable
// plus Reviewer.
func CanReview(id Identity) bool {
	return CanEdit(id) || id.HasRole(RoleReviewer)
}

// CanView reports whether the identity may read: any assigned role.
func CanView(id Identity) bool {
	return CanReview(id) || id.HasRole(RoleViewer)
}

// HasCapability maps a permission to the corresponding role check.
func HasCapability(id Identity, perm Permission) bool {
	switch perm {
	case PermissionRead:
		return CanView(id)
	case PermissionWrite:
		return CanEdit(id)
	default:
		return false
	}
}
