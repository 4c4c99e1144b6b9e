// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/phrasehub/phrasehub/internal/config"
	"github.com/phrasehub/phrasehub/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the PhraseHub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrasehub",
		Short: "PhraseHub - translation key management",
		Long: `PhraseHub manages localization keys and translations across services,
with role and ownership based access control and a full audit trail.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path")
	pf.String("database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	// Flag defaults must match the config package defaults: posflag feeds
	// unchanged flags into koanf when the key is absent from other sources.
	pf.String("log-format", "json", `log output format ("json" or "text")`)
	pf.String("metrics-addr", "127.0.0.1:9090", "metrics and health listen address")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewEventsCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}

// loadConfig resolves runtime configuration for a subcommand and installs
// the default logger with the configured format.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	logging.SetDefault("phrasehub", version, cfg.LogFormat)
	return cfg, nil
}
