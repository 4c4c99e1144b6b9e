// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package exchange

// ChangeType classifies one planned write.
type ChangeType string

// Planned write kinds. No-ops never appear in a report.
const (
	ChangeCreateKey         ChangeType = "create_key"
	ChangeUpdateKey         ChangeType = "update_key"
	ChangeCreateTranslation ChangeType = "create_translation"
	ChangeUpdateTranslation ChangeType = "update_translation"
)

// Change is one entry in a diff report.
type Change struct {
	Type    ChangeType `json:"type"`
	KeyID   string     `json:"keyId"`
	KeyName string     `json:"keyName"`
	Locale  string     `json:"locale,omitempty"`
	Fields  []string   `json:"fields,omitempty"`
}

// Summary counts the planned writes by kind.
type Summary struct {
	KeysToCreate         int `json:"keysToCreate"`
	KeysToUpdate         int `json:"keysToUpdate"`
	TranslationsToCreate int `json:"translationsToCreate"`
	TranslationsToUpdate int `json:"translationsToUpdate"`
}

// DiffReport is the result of planning an import. An empty Changes slice
// means the payload matches current state exactly.
type DiffReport struct {
	Summary Summary  `json:"summary"`
	Changes []Change `json:"changes"`
}

// Empty reports whether the plan contains no writes.
func (r *DiffReport) Empty() bool {
	return len(r.Changes) == 0
}

func (r *DiffReport) add(c Change) {
	switch c.Type {
	case ChangeCreateKey:
		r.Summary.KeysToCreate++
	case ChangeUpdateKey:
		r.Summary.KeysToUpdate++
	case ChangeCreateTranslation:
		r.Summary.TranslationsToCreate++
	case ChangeUpdateTranslation:
		r.Summary.TranslationsToUpdate++
	}
	r.Changes = append(r.Changes, c)
}

// tagsEqual compares tag lists as sets.
func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// strPtrEqual compares optional references by value.
func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
