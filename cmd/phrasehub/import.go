// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/exchange"
	"github.com/phrasehub/phrasehub/internal/identity"
)

// importConfig holds configuration for the import command.
type importConfig struct {
	file    string
	service string
	dryRun  bool
	actor   string
	roles   []string
}

// NewImportCmd creates the import subcommand.
func NewImportCmd() *cobra.Command {
	cfg := &importConfig{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a translation payload into a service",
		Long: `Validates a JSON payload against the exchange schema, diffs it
against the current catalog state, and applies the changes in a single
transaction. With --dry-run the diff report is printed and nothing is
written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "payload file path (JSON)")
	cmd.Flags().StringVar(&cfg.service, "service", "", "target service code")
	cmd.Flags().BoolVar(&cfg.dryRun, "dry-run", false, "print the diff report without writing")
	cmd.Flags().StringVar(&cfg.actor, "actor", "cli", "actor recorded in the audit trail")
	cmd.Flags().StringSliceVar(&cfg.roles, "role", []string{"admin"}, "roles of the acting identity")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}

func runImport(cmd *cobra.Command, _ []string, cfg *importConfig) error {
	raw, err := os.ReadFile(cfg.file)
	if err != nil {
		return oops.Code("IMPORT_FAILED").With("file", cfg.file).Wrap(err)
	}
	payload, err := exchange.Decode(raw)
	if err != nil {
		return err
	}

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

	if cfg.dryRun {
		report, err := a.reconciler.Plan(ctx, id, serviceID, payload)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	}

	result, err := a.reconciler.Apply(ctx, id, serviceID, payload)
	if err != nil {
		return err
	}
	cmd.Printf("Import complete: %d keys, %d translations written\n",
		result.KeysWritten, result.TranslationsWritten)
	return nil
}

// printJSON renders v as indented JSON on the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
