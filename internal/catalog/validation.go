// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package catalog

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxKeyNameLength = 200
	MaxValueLength   = 10000
	MaxTagCount      = 20
	MaxTagLength     = 50
	MaxCodeLength    = 64
	MaxNameLength    = 100
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// serviceCodeRegex matches lowercase alphanumeric codes with single dashes.
var serviceCodeRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateServiceCode checks that a service code is a valid human-readable
// key: lowercase alphanumerics and dashes, within length limit.
func ValidateServiceCode(code string) error {
	if code == "" {
		return &ValidationError{Field: "code", Message: "cannot be empty"}
	}
	if len(code) > MaxCodeLength {
		return &ValidationError{Field: "code", Message: fmt.Sprintf("exceeds maximum length of %d", MaxCodeLength)}
	}
	if !serviceCodeRegex.MatchString(code) {
		return &ValidationError{Field: "code", Message: "must be lowercase alphanumerics separated by dashes"}
	}
	return nil
}

// ValidateName checks a display name: non-empty, valid UTF-8, no control
// characters, within length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateKeyName checks an i18n key name.
func ValidateKeyName(keyName string) error {
	if keyName == "" {
		return &ValidationError{Field: "keyName", Message: "cannot be empty"}
	}
	if !utf8.ValidString(keyName) {
		return &ValidationError{Field: "keyName", Message: "must be valid UTF-8"}
	}
	if len(keyName) > MaxKeyNameLength {
		return &ValidationError{Field: "keyName", Message: fmt.Sprintf("exceeds maximum length of %d", MaxKeyNameLength)}
	}
	if hasControlChars(keyName) {
		return &ValidationError{Field: "keyName", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateTags checks a key's tag list.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagCount {
		return &ValidationError{Field: "tags", Message: fmt.Sprintf("exceeds maximum count of %d", MaxTagCount)}
	}
	for _, tag := range tags {
		if tag == "" {
			return &ValidationError{Field: "tags", Message: "cannot contain empty tags"}
		}
		if len(tag) > MaxTagLength {
			return &ValidationError{Field: "tags", Message: fmt.Sprintf("tag %q exceeds maximum length of %d", tag, MaxTagLength)}
		}
	}
	return nil
}

// ValidateStatus checks membership in the status vocabulary.
func ValidateStatus(status Status) error {
	switch status {
	case StatusDraft, StatusActive, StatusArchived:
		return nil
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
}

// ValidateLocale checks membership in the supported locale set.
func ValidateLocale(locale string) error {
	if locale == "" {
		return &ValidationError{Field: "locale", Message: "cannot be empty"}
	}
	if !IsSupportedLocale(locale) {
		return &ValidationError{Field: "locale", Message: fmt.Sprintf("unsupported locale %q", locale)}
	}
	return nil
}

// ValidateValue checks a translation value.
func ValidateValue(value string) error {
	if !utf8.ValidString(value) {
		return &ValidationError{Field: "value", Message: "must be valid UTF-8"}
	}
	if len(value) > MaxValueLength {
		return &ValidationError{Field: "value", Message: fmt.Sprintf("exceeds maximum length of %d", MaxValueLength)}
	}
	return nil
}

// hasControlChars reports whether s contains any control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
