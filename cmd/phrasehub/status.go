// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/config"
	"github.com/phrasehub/phrasehub/internal/store"
)

const statusTimeout = 5 * time.Second

// DatabaseStatus holds the health information reported by the status
// command.
type DatabaseStatus struct {
	Reachable        bool   `json:"reachable"`
	MigrationVersion uint   `json:"migration_version"`
	MigrationName    string `json:"migration_name,omitempty"`
	Dirty            bool   `json:"dirty"`
	Error            string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database connectivity and migration state",
		Long:  `Checks that the PostgreSQL database is reachable and reports the current migration version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := appCfg.RequireDatabaseURL(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	status := queryDatabaseStatus(ctx, appCfg)

	var output string
	if cfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		output = string(data)
	} else {
		output = formatStatusTable(status)
	}

	cmd.Println(output)
	return nil
}

// queryDatabaseStatus pings the database and reads the migration version.
// Failures are reported in the returned struct rather than as an error so
// the command can still render partial information.
func queryDatabaseStatus(ctx context.Context, cfg *config.Config) DatabaseStatus {
	var status DatabaseStatus

	pool, err := store.Connect(ctx, cfg.DatabaseURL, statusTimeout)
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	defer pool.Close()
	status.Reachable = true

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		status.Error = fmt.Sprintf("failed to open migrator: %v", err)
		return status
	}
	defer func() { _ = migrator.Close() }()

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = fmt.Sprintf("failed to read migration version: %v", err)
		return status
	}
	status.MigrationVersion = version
	status.Dirty = dirty
	if name, nameErr := store.MigrationName(version); nameErr == nil {
		status.MigrationName = name
	}

	return status
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status DatabaseStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "DATABASE\tMIGRATION\tDIRTY\tDETAIL")
	_, _ = fmt.Fprintln(w, "--------\t---------\t-----\t------")

	reachable := "unreachable"
	if status.Reachable {
		reachable = "ok"
	}
	migration := "-"
	if status.Reachable && status.Error == "" {
		migration = fmt.Sprintf("%d", status.MigrationVersion)
		if status.MigrationName != "" {
			migration += " (" + status.MigrationName + ")"
		}
	}
	detail := status.Error
	if detail == "" {
		detail = "-"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", reachable, migration, status.Dirty, detail)

	_ = w.Flush()
	return string(buf)
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
