// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package audit provides the append-only audit trail: every mutation
// records one immutable before/after event tied to the acting identity,
// inside the same transaction as the mutation itself. Events are redacted
// at read time only; the stored original is the compliance record and is
// never modified.
package audit

import (
	"encoding/json"
	"time"
)

// Action classifies a mutation.
type Action string

// Audited actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionImport Action = "import"
	ActionExport Action = "export"
)

// Event is a single immutable audit record as stored. Before is nil for
// creates; After is nil for deletes; both are present for updates.
type Event struct {
	ID         string
	Actor      string
	Action     Action
	EntityType string
	EntityID   string
	Before     json.RawMessage
	After      json.RawMessage
	CreatedAt  time.Time
}

// Entry is the caller-supplied portion of an event. The id and timestamp
// are always server-assigned; callers cannot supply either.
type Entry struct {
	Actor      string
	Action     Action
	EntityType string
	EntityID   string
	Before     any
	After      any
}
