// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"encoding/json"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/exchange"
	"github.com/phrasehub/phrasehub/internal/identity"
)

// exportConfig holds configuration for the export command.
type exportConfig struct {
	service      string
	locales      []string
	status       string
	includeEmpty bool
	out          string
	actor        string
	roles        []string
}

// NewExportCmd creates the export subcommand.
func NewExportCmd() *cobra.Command {
	cfg := &exportConfig{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a service's keys and translations",
		Long: `Writes a service's keys and translations as a JSON payload suitable
for re-import. Re-importing an unmodified export is a no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.service, "service", "", "service code to export")
	cmd.Flags().StringSliceVar(&cfg.locales, "locales", nil, "locales to include (default all)")
	cmd.Flags().StringVar(&cfg.status, "status", "", "only keys with this status")
	cmd.Flags().BoolVar(&cfg.includeEmpty, "include-empty", false, "include keys with no translations")
	cmd.Flags().StringVar(&cfg.out, "out", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&cfg.actor, "actor", "cli", "actor recorded in the audit trail")
	cmd.Flags().StringSliceVar(&cfg.roles, "role", []string{"admin"}, "roles of the acting identity")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string, cfg *exportConfig) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	serviceID, err := a.resolveServiceID(ctx, cfg.service)
	if err != nil {
		return err
	}
	id := identity.FromResolver(cfg.actor, cfg.roles)

	payload, err := a.reconciler.Export(ctx, id, serviceID, exchange.ExportOptions{
		Locales:          cfg.locales,
		Status:           catalog.Status(cfg.status),
		IncludeEmptyKeys: cfg.includeEmpty,
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return oops.Code("EXPORT_FAILED").With("operation", "marshal payload").Wrap(err)
	}
	data = append(data, '\n')

	if cfg.out == "" {
		cmd.Print(string(data))
		return nil
	}
	if err := os.WriteFile(cfg.out, data, 0o600); err != nil {
		return oops.Code("EXPORT_FAILED").With("file", cfg.out).Wrap(err)
	}
	cmd.Printf("Exported %d keys to %s\n", len(payload.Data.Keys), cfg.out)
	return nil
}
