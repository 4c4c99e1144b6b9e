// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package access

import "fmt"

type filterMode int

const (
	modeDenyAll filterMode = iota
	modeUnrestricted
	modeOwnedServices
)

// Filter is a composable predicate restricting list queries to rows the
// identity may access. It renders to a SQL clause for repository queries
// and evaluates in-memory for already-loaded rows.
type Filter struct {
	mode       filterMode
	serviceIDs []string
}

// Unrestricted admits every row.
func Unrestricted() Filter { return Filter{mode: modeUnrestricted} }

// DenyAll admits no rows.
func DenyAll() Filter { return Filter{mode: modeDenyAll} }

// OwnedServices admits rows whose owning service is in ids. Rows with no
// owning service are excluded: an identity without role capability has no
// fallback access to legacy data.
func OwnedServices(ids []string) Filter {
	return Filter{mode: modeOwnedServices, serviceIDs: ids}
}

// IsUnrestricted reports whether the filter admits every row.
func (f Filter) IsUnrestricted() bool { return f.mode == modeUnrestricted }

// IsDenyAll reports whether the filter admits no rows.
func (f Filter) IsDenyAll() bool { return f.mode == modeDenyAll }

// ServiceIDs returns the admitted service ids for an owned-services filter.
func (f Filter) ServiceIDs() []string { return f.serviceIDs }

// SQL renders the filter as a WHERE fragment over the given service-id
// column. argIndex is the 1-based position of the first placeholder. The
// returned args slice is empty for unrestricted and deny-all filters.
//
// A NULL service-id column never matches the owned-services clause, which
// matches the point-check semantics for no-service rows.
func (f Filter) SQL(column string, argIndex int) (string, []any) {
	switch f.mode {
	case modeUnrestricted:
		return "TRUE", nil
	case modeOwnedServices:
		return fmt.Sprintf("%s = ANY($%d)", column, argIndex), []any{f.serviceIDs}
	default:
		return "FALSE", nil
	}
}

// Allows evaluates the filter in memory against a row's owning service id.
// serviceID is nil for rows with no owning service.
func (f Filter) Allows(serviceID *string) bool {
	switch f.mode {
	case modeUnrestricted:
		return true
	case modeOwnedServices:
		if serviceID == nil {
			return false
		}
		for _, id := range f.serviceIDs {
			if id == *serviceID {
				return true
			}
		}
		return false
	default:
		return false
	}
}
