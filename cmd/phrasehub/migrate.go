// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against the PostgreSQL database.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabaseURL(); err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("Migration version %d is dirty; run with a clean database or force the version\n", version)
		return nil
	}

	cmd.Printf("Migrations completed successfully (version %d)\n", version)
	return nil
}
