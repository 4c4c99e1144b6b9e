// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package catalog defines the i18n domain model (services, namespaces,
// keys, translations, release bundles) and the authorized operations over
// it. Persistence lives in catalog/postgres.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Status is the lifecycle state shared by keys and translations.
type Status string

// Lifecycle states.
const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// SupportedLocales is the closed set of translation locales.
var SupportedLocales = []string{
	"de", "en", "es", "fr", "it", "ja", "ko", "pt-BR", "ru", "vi", "zh-CN", "zh-TW",
}

// IsSupportedLocale reports whether locale is in SupportedLocales.
func IsSupportedLocale(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// Service is the top-level organizational and ownership boundary.
// Membership in Owners grants full read/write on the service and
// everything beneath it, regardless of role.
type Service struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Owners    []string  `json:"owners"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasOwner reports whether subjectID is in the owners set.
func (s *Service) HasOwner(subjectID string) bool {
	for _, o := range s.Owners {
		if o == subjectID {
			return true
		}
	}
	return false
}

// Namespace groups keys under a service (or none, for the common scope).
// It carries no access rules of its own.
type Namespace struct {
	ID        string    `json:"id"`
	ServiceID *string   `json:"service_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Key is a named, locale-independent identifier for a piece of text.
// ServiceID is nil for legacy/common keys, which are role-gated only.
type Key struct {
	ID          string    `json:"id"`
	KeyName     string    `json:"key_name"`
	ServiceID   *string   `json:"service_id"`
	NamespaceID *string   `json:"namespace_id"`
	Tags        []string  `json:"tags"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Translation is the locale-specific value for a key. Version starts at 1
// and every write increments it by exactly one; it never decrements.
type Translation struct {
	ID        string    `json:"id"`
	KeyID     string    `json:"key_id"`
	Locale    string    `json:"locale"`
	Value     string    `json:"value"`
	Status    Status    `json:"status"`
	Version   int       `json:"version"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValueChecksum returns the hex SHA-256 of a translation value.
func ValueChecksum(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// ReleaseBundle is a named snapshot reference for a service and a set of
// locales. Read-only once created.
type ReleaseBundle struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	Name      string    `json:"name"`
	Locales   []string  `json:"locales"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
