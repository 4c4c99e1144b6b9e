// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrasehub/phrasehub/internal/store"
)

func newTestReader(t *testing.T) (*Reader, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	redactor, err := NewRedactor(DefaultConfig())
	require.NoError(t, err)
	return NewReader(store.NewDB(mock), redactor), mock
}

func eventRow(id string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "actor", "action", "entity_type", "entity_id", "before", "after", "created_at",
	}).AddRow(id, "u1", "update", "translation", "t1",
		[]byte(`{"value":"mail a@b.io"}`), []byte(`{"value":"new"}`), time.Now().UTC())
}

func TestReaderGetRedacts(t *testing.T) {
	reader, mock := newTestReader(t)

	mock.ExpectQuery("SELECT (.+) FROM events WHERE id").
		WithArgs("01E").
		WillReturnRows(eventRow("01E"))

	ev, err := reader.Get(context.Background(), "01E")
	require.NoError(t, err)

	var before map[string]any
	require.NoError(t, json.Unmarshal(ev.Before, &before))
	assert.Equal(t, "mail [EMAIL_REDACTED]", before["value"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderGetNotFound(t *testing.T) {
	reader, mock := newTestReader(t)

	mock.ExpectQuery("SELECT (.+) FROM events WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "actor", "action", "entity_type", "entity_id", "before", "after", "created_at",
		}))

	_, err := reader.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestReaderList(t *testing.T) {
	reader, mock := newTestReader(t)

	mock.ExpectQuery("SELECT (.+) FROM events WHERE entity_type = (.+) ORDER BY created_at DESC").
		WithArgs("translation", 10).
		WillReturnRows(eventRow("01E"))

	events, err := reader.List(context.Background(), ListOptions{EntityType: "translation", Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "01E", events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderListNoFilters(t *testing.T) {
	reader, mock := newTestReader(t)

	mock.ExpectQuery("SELECT (.+) FROM events ORDER BY created_at DESC").
		WillReturnRows(eventRow("01E"))

	events, err := reader.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
