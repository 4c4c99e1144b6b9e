// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package exchange reconciles bulk import/export payloads against the
// catalog. Plan computes a diff without writing; Apply executes exactly
// the planned writes in one transaction, each individually audited;
// Export emits the same payload shape Apply consumes, so an unmodified
// export round-trips to an empty diff.
package exchange

import "time"

// Payload is the import input and export output shape.
type Payload struct {
	Service    string    `json:"service"`
	Locales    []string  `json:"locales"`
	ExportedAt time.Time `json:"exportedAt"`
	Data       Data      `json:"data"`
}

// Data holds the payload body.
type Data struct {
	Keys []PayloadKey `json:"keys"`
}

// PayloadKey is one key with its translations.
type PayloadKey struct {
	ID           string               `json:"id"`
	KeyName      string               `json:"keyName"`
	NamespaceID  *string              `json:"namespaceId,omitempty"`
	Tags         []string             `json:"tags"`
	Status       string               `json:"status"`
	Translations []PayloadTranslation `json:"translations"`
}

// PayloadTranslation is one locale value under a key. Version is
// informational on import; the server manages versions itself.
type PayloadTranslation struct {
	Locale  string `json:"locale"`
	Value   string `json:"value"`
	Status  string `json:"status"`
	Version int    `json:"version"`
}
