// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package audit

import (
	"context"
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/store"
)

// Recorder appends audit events.
type Recorder interface {
	// Record appends one event and returns its server-assigned id. A
	// failure is fatal for the enclosing mutation: when called inside a
	// transaction scope the whole transaction must abort, so an audited
	// system never holds unaudited mutations.
	Record(ctx context.Context, e Entry) (string, error)
}

// PostgresRecorder implements Recorder over the events table. It issues
// its insert through the store's transaction-aware querier, so a Record
// call inside store.DB.InTransaction joins the caller's transaction.
type PostgresRecorder struct {
	db *store.DB
}

// NewPostgresRecorder creates a PostgresRecorder.
func NewPostgresRecorder(db *store.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Record validates and appends the entry. The event id is a fresh ULID and
// the timestamp is assigned by the database.
func (r *PostgresRecorder) Record(ctx context.Context, e Entry) (string, error) {
	if err := validateEntry(e); err != nil {
		return "", err
	}

	before, err := marshalSnapshot(e.Before)
	if err != nil {
		return "", oops.Code("AUDIT_WRITE_FAILED").With("entity_type", e.EntityType).Wrap(err)
	}
	after, err := marshalSnapshot(e.After)
	if err != nil {
		return "", oops.Code("AUDIT_WRITE_FAILED").With("entity_type", e.EntityType).Wrap(err)
	}

	id := ulid.Make().String()
	_, err = r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO events (id, actor, action, entity_type, entity_id, before, after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, e.Actor, string(e.Action), e.EntityType, e.EntityID, before, after)
	if err != nil {
		recordFailure(e.Action)
		return "", oops.Code("AUDIT_WRITE_FAILED").
			With("entity_type", e.EntityType).With("entity_id", e.EntityID).Wrap(err)
	}

	recordWrite(e.Action)
	return id, nil
}

// validateEntry enforces the before/after population rules.
func validateEntry(e Entry) error {
	if e.Actor == "" {
		return oops.Code("AUDIT_INVALID_ENTRY").Errorf("actor is required")
	}
	if e.EntityType == "" || e.EntityID == "" {
		return oops.Code("AUDIT_INVALID_ENTRY").Errorf("entity type and id are required")
	}
	switch e.Action {
	case ActionCreate:
		if e.Before != nil {
			return oops.Code("AUDIT_INVALID_ENTRY").Errorf("create events must not carry a before snapshot")
		}
	case ActionDelete:
		if e.After != nil {
			return oops.Code("AUDIT_INVALID_ENTRY").Errorf("delete events must not carry an after snapshot")
		}
	case ActionUpdate:
		if e.Before == nil || e.After == nil {
			return oops.Code("AUDIT_INVALID_ENTRY").Errorf("update events require both snapshots")
		}
	case ActionImport, ActionExport:
		// Bulk actions carry whatever summary the reconciler provides.
	default:
		return oops.Code("AUDIT_INVALID_ENTRY").Errorf("unknown action %q", e.Action)
	}
	return nil
}

// marshalSnapshot serializes a snapshot, mapping nil to SQL NULL.
func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}
