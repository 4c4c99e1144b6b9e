// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/seed"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a fixture file into the catalog",
		Long: `Loads services, keys, and translations from a YAML fixture file.
This command is idempotent - existing entities are skipped, so it is safe
to run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "fixture file path (YAML)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	fixture, err := seed.LoadFixture(cfg.file)
	if err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd.Println("Applying fixture...")
	result, err := seed.NewLoader(a.db).Apply(ctx, fixture)
	if err != nil {
		return err
	}

	cmd.Printf("Seed complete: %d services, %d keys, %d translations created (%d skipped)\n",
		result.ServicesCreated, result.KeysCreated, result.TranslationsCreated, result.Skipped)
	slog.Info("fixture applied",
		"file", cfg.file,
		"services_created", result.ServicesCreated,
		"keys_created", result.KeysCreated,
		"translations_created", result.TranslationsCreated,
		"skipped", result.Skipped)
	return nil
}
