// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/store"
)

// ErrEventNotFound is returned when no event matches the requested id.
var ErrEventNotFound = errors.New("event not found")

// eventColumns is the shared column list for SELECT queries.
const eventColumns = `id, actor, action, entity_type, entity_id, before, after, created_at`

// ListOptions narrows an event list query. Zero values mean no filter.
type ListOptions struct {
	EntityType string
	EntityID   string
	Actor      string
	Action     Action
	Limit      int
}

// Reader reads events back with redaction applied. The stored rows are
// never altered; only the returned copies are.
type Reader struct {
	db       *store.DB
	redactor *Redactor
}

// NewReader creates a Reader using the given redactor.
func NewReader(db *store.DB, redactor *Redactor) *Reader {
	return &Reader{db: db, redactor: redactor}
}

// Get retrieves one redacted event by id.
func (r *Reader) Get(ctx context.Context, id string) (*Event, error) {
	row := r.db.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns), id)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("EVENT_NOT_FOUND").With("id", id).Wrap(ErrEventNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get event").With("id", id).Wrap(err)
	}
	return r.redactor.RedactEvent(ev)
}

// List returns redacted events matching opts, newest first.
func (r *Reader) List(ctx context.Context, opts ListOptions) ([]*Event, error) {
	var where []string
	var args []any
	argIdx := 1

	if opts.EntityType != "" {
		where = append(where, fmt.Sprintf("entity_type = $%d", argIdx))
		args = append(args, opts.EntityType)
		argIdx++
	}
	if opts.EntityID != "" {
		where = append(where, fmt.Sprintf("entity_id = $%d", argIdx))
		args = append(args, opts.EntityID)
		argIdx++
	}
	if opts.Actor != "" {
		where = append(where, fmt.Sprintf("actor = $%d", argIdx))
		args = append(args, opts.Actor)
		argIdx++
	}
	if opts.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", argIdx))
		args = append(args, string(opts.Action))
		argIdx++
	}

	query := fmt.Sprintf("SELECT %s FROM events", eventColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
	}

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, oops.With("operation", "list events").Wrap(err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, oops.With("operation", "scan event").Wrap(err)
		}
		redacted, err := r.redactor.RedactEvent(ev)
		if err != nil {
			return nil, err
		}
		events = append(events, redacted)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate events").Wrap(err)
	}
	return events, nil
}

// scanEvent scans a row into an Event.
func scanEvent(row pgx.Row) (*Event, error) {
	var ev Event
	var action string
	var before, after []byte
	err := row.Scan(&ev.ID, &ev.Actor, &action, &ev.EntityType, &ev.EntityID,
		&before, &after, &ev.CreatedAt)
	if err != nil {
		return nil, err
	}
	ev.Action = Action(action)
	ev.Before = before
	ev.After = after
	return &ev, nil
}
