// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package audit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedactor(t *testing.T) *Redactor {
	t.Helper()
	r, err := NewRedactor(DefaultConfig())
	require.NoError(t, err)
	return r
}

func TestRedactSensitiveFieldNames(t *testing.T) {
	r := newTestRedactor(t)

	tests := []struct {
		name  string
		in    map[string]any
		field string
		want  string
	}{
		{
			name:  "password field",
			in:    map[string]any{"password": "hunter2"},
			field: "password", want: sensitiveFieldMarker,
		},
		{
			name:  "field containing secret",
			in:    map[string]any{"client_secret": "abc"},
			field: "client_secret", want: sensitiveFieldMarker,
		},
		{
			name:  "token field",
			in:    map[string]any{"refreshToken": "xyz"},
			field: "refreshToken", want: sensitiveFieldMarker,
		},
		{
			name:  "api key field",
			in:    map[string]any{"apiKey": "k"},
			field: "apiKey", want: sensitiveFieldMarker,
		},
		{
			name:  "whitelisted key_name passes",
			in:    map[string]any{"key_name": "home.title"},
			field: "key_name", want: "home.title",
		},
		{
			name:  "whitelisted keyId passes",
			in:    map[string]any{"keyId": "01ABC"},
			field: "keyId", want: "01ABC",
		},
		{
			name:  "plain field passes",
			in:    map[string]any{"value": "hello"},
			field: "value", want: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Redact(tt.in).(map[string]any)
			assert.Equal(t, tt.want, out[tt.field])
		})
	}
}

func TestRedactFieldNameRulePrecedesPatterns(t *testing.T) {
	r := newTestRedactor(t)

	// The sensitive-name rule replaces the whole value; the embedded email
	// must not surface via the pattern rule.
	out := r.Redact(map[string]any{"credentials": "admin@corp.example / hunter2"}).(map[string]any)
	assert.Equal(t, sensitiveFieldMarker, out["credentials"])
}

func TestRedactLengthRule(t *testing.T) {
	r := newTestRedactor(t)

	out := r.Redact(map[string]any{"value": strings.Repeat("a", 150)}).(map[string]any)
	assert.Equal(t, "[REDACTED: 150 characters - exceeds 100 chars]", out["value"])
}

func TestRedactLengthRuleShortCircuitsPatterns(t *testing.T) {
	r := newTestRedactor(t)

	long := "contact me at someone@example.com " + strings.Repeat("x", 100)
	out := r.Redact(map[string]any{"note": long}).(map[string]any)
	got := out["note"].(string)
	assert.True(t, strings.HasPrefix(got, "[REDACTED: "), "length marker expected, got %q", got)
	assert.NotContains(t, got, "@")
}

func TestRedactPatterns(t *testing.T) {
	r := newTestRedactor(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "email", in: "call support@x.com", want: "call [EMAIL_REDACTED]"},
		{name: "email preserves surrounding text", in: "mail a@b.io today", want: "mail [EMAIL_REDACTED] today"},
		{name: "ssn", in: "ssn is 123-45-6789 ok", want: "ssn is [SSN_REDACTED] ok"},
		{name: "credit card", in: "pay 4111 1111 1111 1111 now", want: "pay [CARD_REDACTED] now"},
		{name: "phone", in: "call 555-123-4567", want: "call [PHONE_REDACTED]"},
		{name: "ipv4", in: "from 192.168.1.10", want: "from [IP_REDACTED]"},
		{name: "url query string", in: "https://x.com/cb?code=abc&state=9", want: "https://x.com/cb?[QUERY_REDACTED]"},
		{name: "long token run", in: "bearer " + strings.Repeat("a1", 20), want: "bearer [TOKEN_REDACTED]"},
		{name: "clean text untouched", in: "hello world", want: "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Redact(map[string]any{"contact": tt.in}).(map[string]any)
			assert.Equal(t, tt.want, out["contact"])
		})
	}
}

func TestRedactNestedStructures(t *testing.T) {
	r := newTestRedactor(t)

	in := map[string]any{
		"id":     "01ABC",
		"status": "active",
		"nested": map[string]any{
			"password": "pw",
			"contact":  "x@y.dev",
			"list":     []any{"a@b.cz", "plain", float64(7)},
		},
		"count":   float64(3),
		"enabled": true,
		"gone":    nil,
	}

	out := r.Redact(in).(map[string]any)
	assert.Equal(t, "01ABC", out["id"])
	assert.Equal(t, "active", out["status"])
	assert.Equal(t, float64(3), out["count"])
	assert.Equal(t, true, out["enabled"])
	assert.Nil(t, out["gone"])

	nested := out["nested"].(map[string]any)
	assert.Equal(t, sensitiveFieldMarker, nested["password"])
	assert.Equal(t, "[EMAIL_REDACTED]", nested["contact"])
	list := nested["list"].([]any)
	assert.Equal(t, "[EMAIL_REDACTED]", list[0])
	assert.Equal(t, "plain", list[1])
	assert.Equal(t, float64(7), list[2])
}

func TestRedactDoesNotMutateInput(t *testing.T) {
	r := newTestRedactor(t)

	in := map[string]any{"password": "pw", "list": []any{"a@b.io"}}
	_ = r.Redact(in)
	assert.Equal(t, "pw", in["password"])
	assert.Equal(t, "a@b.io", in["list"].([]any)[0])
}

// Redaction must be idempotent: a second pass over redacted output is a
// no-op, and detectable PII never survives the first pass.
func TestRedactIdempotence(t *testing.T) {
	r := newTestRedactor(t)

	inputs := []map[string]any{
		{"password": "hunter2"},
		{"value": strings.Repeat("a", 150)},
		{"contact": "call support@x.com"},
		{"note": "ssn 123-45-6789 and card 4111-1111-1111-1111"},
		{"mixed": map[string]any{"secretSauce": "x", "text": "ip 10.0.0.1 mail a@b.io"}},
	}

	for _, in := range inputs {
		once := r.Redact(in)
		twice := r.Redact(once)
		assert.Equal(t, once, twice)
	}

	out := r.Redact(map[string]any{"contact": "support@x.com"}).(map[string]any)
	assert.NotContains(t, out["contact"], "support@x.com")
}

// Only the engine's own whole-value markers are exempt from re-scanning; a
// user value that happens to start with "[REDACTED" still gets every rule.
func TestRedactValueSpoofingMarkerPrefix(t *testing.T) {
	r := newTestRedactor(t)

	out := r.Redact(map[string]any{
		"note":    "[REDACTED my ssn is 123-45-6789",
		"contact": "[REDACTED: reach me at a@b.io]",
	}).(map[string]any)

	assert.Equal(t, "[REDACTED my ssn is [SSN_REDACTED]", out["note"])
	assert.NotContains(t, out["note"], "123-45-6789")
	assert.Equal(t, "[REDACTED: reach me at [EMAIL_REDACTED]]", out["contact"])
}

// A pattern marker can make a value longer than the input was. The length
// rule must not collapse such output on a second pass.
func TestRedactIdempotenceNearLengthThreshold(t *testing.T) {
	r := newTestRedactor(t)

	// 99 characters before redaction, 109 after the email marker lands.
	in := map[string]any{"note": strings.Repeat("ab ", 31) + "a@b.co"}
	once := r.Redact(in)
	twice := r.Redact(once)

	assert.Equal(t, strings.Repeat("ab ", 31)+"[EMAIL_REDACTED]", once.(map[string]any)["note"])
	assert.Equal(t, once, twice)
}

func TestRedactDeterminism(t *testing.T) {
	r := newTestRedactor(t)

	in := map[string]any{"a": "x@y.io", "b": map[string]any{"token": "t", "n": float64(1)}}
	first := r.Redact(in)
	second := r.Redact(in)
	assert.Equal(t, first, second)
}

func TestRedactEvent(t *testing.T) {
	r := newTestRedactor(t)

	before, err := json.Marshal(map[string]any{"value": "old", "contact": "a@b.io"})
	require.NoError(t, err)
	after, err := json.Marshal(map[string]any{"value": "new", "password": "pw"})
	require.NoError(t, err)

	ev := &Event{ID: "01E", Action: ActionUpdate, Before: before, After: after}
	got, err := r.RedactEvent(ev)
	require.NoError(t, err)

	// The original event is untouched.
	assert.JSONEq(t, string(before), string(ev.Before))

	var gotBefore, gotAfter map[string]any
	require.NoError(t, json.Unmarshal(got.Before, &gotBefore))
	require.NoError(t, json.Unmarshal(got.After, &gotAfter))
	assert.Equal(t, "[EMAIL_REDACTED]", gotBefore["contact"])
	assert.Equal(t, sensitiveFieldMarker, gotAfter["password"])
	assert.Equal(t, "new", gotAfter["value"])
}

func TestRedactEventNilSnapshots(t *testing.T) {
	r := newTestRedactor(t)

	ev := &Event{ID: "01E", Action: ActionCreate, After: json.RawMessage(`{"id":"k1"}`)}
	got, err := r.RedactEvent(ev)
	require.NoError(t, err)
	assert.Nil(t, got.Before)
	assert.JSONEq(t, `{"id":"k1"}`, string(got.After))
}

func TestNewRedactorRejectsBadPattern(t *testing.T) {
	_, err := NewRedactor(Config{SensitiveFields: []string{"[unclosed"}})
	require.Error(t, err)
}

func TestRedactorConfigurableThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxValueLength = 10
	r, err := NewRedactor(cfg)
	require.NoError(t, err)

	out := r.Redact(map[string]any{"value": "12345678901"}).(map[string]any)
	assert.Equal(t, "[REDACTED: 11 characters - exceeds 10 chars]", out["value"])
}
