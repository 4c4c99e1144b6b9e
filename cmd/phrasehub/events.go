// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/audit"
)

// eventsConfig holds configuration for the events command.
type eventsConfig struct {
	entityType string
	entityID   string
	actor      string
	action     string
	limit      int
	jsonOutput bool
}

// eventOutput is the JSON shape of one listed event.
type eventOutput struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewEventsCmd creates the events subcommand.
func NewEventsCmd() *cobra.Command {
	cfg := &eventsConfig{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List audit events",
		Long: `Lists audit events, newest first. Before and after snapshots are
redacted on read; the stored records are never modified.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvents(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.entityType, "entity-type", "", "filter by entity type (service, namespace, key, translation, release_bundle)")
	cmd.Flags().StringVar(&cfg.entityID, "entity-id", "", "filter by entity id")
	cmd.Flags().StringVar(&cfg.actor, "actor", "", "filter by actor")
	cmd.Flags().StringVar(&cfg.action, "action", "", "filter by action (create, update, delete, import, export)")
	cmd.Flags().IntVar(&cfg.limit, "limit", 50, "maximum number of events")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output events as JSON")

	return cmd
}

func runEvents(cmd *cobra.Command, cfg *eventsConfig) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.events.List(ctx, audit.ListOptions{
		EntityType: cfg.entityType,
		EntityID:   cfg.entityID,
		Actor:      cfg.actor,
		Action:     audit.Action(cfg.action),
		Limit:      cfg.limit,
	})
	if err != nil {
		return err
	}

	if cfg.jsonOutput {
		out := make([]eventOutput, 0, len(events))
		for _, ev := range events {
			out = append(out, eventOutput{
				ID:         ev.ID,
				Actor:      ev.Actor,
				Action:     string(ev.Action),
				EntityType: ev.EntityType,
				EntityID:   ev.EntityID,
				Before:     ev.Before,
				After:      ev.After,
				CreatedAt:  ev.CreatedAt,
			})
		}
		return printJSON(cmd, out)
	}

	cmd.Print(formatEventsTable(events))
	return nil
}

// formatEventsTable formats events as a human-readable table.
func formatEventsTable(events []*audit.Event) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "TIME\tACTOR\tACTION\tENTITY\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t------\t------\t--")
	for _, ev := range events {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ev.CreatedAt.UTC().Format(time.RFC3339), ev.Actor, ev.Action, ev.EntityType, ev.EntityID)
	}

	_ = w.Flush()
	return string(buf)
}
