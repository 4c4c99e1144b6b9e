// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package audit

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// sensitiveFieldMarker replaces the whole value of a sensitive-named field.
const sensitiveFieldMarker = "[REDACTED: sensitive field name]"

// wholeValueMarkerRe matches exactly the whole-value markers this engine
// emits. Only those pass through untouched on later passes; user strings
// that merely start with "[REDACTED" still get the full rule set.
var wholeValueMarkerRe = regexp.MustCompile(
	`^\[REDACTED: (?:sensitive field name|\d+ characters - exceeds \d+ chars)\]$`,
)

// embeddedMarkerRe matches the in-place pattern markers. Marker text is
// excluded when measuring a value against MaxValueLength so a string grown
// past the threshold by an earlier pass is not collapsed on the next one.
var embeddedMarkerRe = regexp.MustCompile(
	`\[(?:EMAIL|SSN|CARD|PHONE|IP|QUERY|TOKEN)_REDACTED\]`,
)

// Config controls the redaction engine. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// MaxValueLength is the string length above which a value is replaced
	// with a length marker.
	MaxValueLength int

	// SensitiveFields are glob patterns matched against lowercased field
	// names. A match redacts the whole value unless an AllowedFields
	// pattern also matches.
	SensitiveFields []string

	// AllowedFields are glob patterns for field names exempt from the
	// sensitive-name rule (identifiers, statuses, timestamps).
	AllowedFields []string
}

// DefaultConfig returns the stock redaction configuration.
func DefaultConfig() Config {
	return Config{
		MaxValueLength: 100,
		SensitiveFields: []string{
			"*password*", "*secret*", "*token*", "*key*", "*credential*",
			"*apikey*", "*auth*", "*ssn*", "*private*",
		},
		AllowedFields: []string{
			"id", "*_id", "*id", "key_name", "keyname", "status", "version",
			"locale", "checksum", "*_at", "created*", "updated*",
		},
	}
}

// patternRule replaces PII matches in place, preserving surrounding text.
type patternRule struct {
	re     *regexp.Regexp
	marker string
}

// patternRules are applied in order; more specific digit shapes come
// before the generic phone rule so an SSN is never half-claimed as a
// phone number.
var patternRules = []patternRule{
	{regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`), "[EMAIL_REDACTED]"},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN_REDACTED]"},
	{regexp.MustCompile(`\b(?:\d{4}[ \-]?){3}\d{4}\b`), "[CARD_REDACTED]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[\-. ])?\(?\d{3}\)?[\-. ]\d{3,4}[\-. ]\d{4}\b`), "[PHONE_REDACTED]"},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "[IP_REDACTED]"},
	{regexp.MustCompile(`\?[A-Za-z0-9_\-=&%.+]+`), "?[QUERY_REDACTED]"},
	{regexp.MustCompile(`\b[A-Za-z0-9]{32,}\b`), "[TOKEN_REDACTED]"},
}

// Redactor applies the redaction rules. Construct with NewRedactor; a
// Redactor is immutable and safe for concurrent use.
type Redactor struct {
	cfg       Config
	sensitive []glob.Glob
	allowed   []glob.Glob
}

// NewRedactor compiles the config's field-name patterns.
func NewRedactor(cfg Config) (*Redactor, error) {
	if cfg.MaxValueLength <= 0 {
		cfg.MaxValueLength = DefaultConfig().MaxValueLength
	}
	sensitive, err := compileGlobs(cfg.SensitiveFields)
	if err != nil {
		return nil, oops.Code("REDACT_CONFIG_INVALID").With("field", "sensitive_fields").Wrap(err)
	}
	allowed, err := compileGlobs(cfg.AllowedFields)
	if err != nil {
		return nil, oops.Code("REDACT_CONFIG_INVALID").With("field", "allowed_fields").Wrap(err)
	}
	return &Redactor{cfg: cfg, sensitive: sensitive, allowed: allowed}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Redact returns a transformed copy of v with sensitive content replaced.
// The input is never mutated, and the transform is a pure function of
// (v, config): no randomness, no time dependence. Numbers, booleans, and
// nulls pass through unchanged; objects and arrays are rebuilt with the
// rules applied recursively.
func (r *Redactor) Redact(v any) any {
	return r.redactValue("", v)
}

// RedactEvent returns a copy of ev with redacted before/after snapshots.
// The stored event is left intact.
func (r *Redactor) RedactEvent(ev *Event) (*Event, error) {
	out := *ev
	before, err := r.redactRaw(ev.Before)
	if err != nil {
		return nil, oops.Code("REDACT_FAILED").With("event_id", ev.ID).With("snapshot", "before").Wrap(err)
	}
	after, err := r.redactRaw(ev.After)
	if err != nil {
		return nil, oops.Code("REDACT_FAILED").With("event_id", ev.ID).With("snapshot", "after").Wrap(err)
	}
	out.Before = before
	out.After = after
	return &out, nil
}

// redactRaw redacts a stored JSON snapshot, preserving nil.
func (r *Redactor) redactRaw(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	out, err := json.Marshal(r.Redact(v))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Redactor) redactValue(fieldName string, v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.redactValue(k, item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.redactValue(fieldName, item)
		}
		return out
	case string:
		return r.redactString(fieldName, val)
	default:
		// Numbers, booleans, nil.
		return v
	}
}

func (r *Redactor) redactString(fieldName, s string) string {
	if wholeValueMarkerRe.MatchString(s) {
		return s
	}

	// Field-name rule takes precedence and short-circuits the rest.
	if fieldName != "" && r.isSensitiveField(fieldName) {
		return sensitiveFieldMarker
	}

	// Length rule short-circuits pattern scanning. Markers from earlier
	// passes do not count toward the limit.
	if n := len(embeddedMarkerRe.ReplaceAllString(s, "")); n > r.cfg.MaxValueLength {
		return fmt.Sprintf("[REDACTED: %d characters - exceeds %d chars]", n, r.cfg.MaxValueLength)
	}

	for _, rule := range patternRules {
		s = rule.re.ReplaceAllString(s, rule.marker)
	}
	return s
}

func (r *Redactor) isSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, g := range r.allowed {
		if g.Match(lower) {
			return false
		}
	}
	for _, g := range r.sensitive {
		if g.Match(lower) {
			return true
		}
	}
	return false
}
