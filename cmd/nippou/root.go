// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with production dependencies.
func NewRootCmd() *cobra.Command {
	return newRootCmd(Deps{})
}

func newRootCmd(deps Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "nippou",
		Short: "nippou - account registration and login",
		Long: `nippou registers user accounts and checks login credentials against
a PostgreSQL or SQLite user store.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path (default $XDG_CONFIG_HOME/nippou/config.yaml)")
	flags.String("database-url", "", "postgres:// URL or SQLite file path")
	flags.String("log-format", "json", "log format: json or text")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("metrics-file", "", "write Prometheus counters to this textfile on exit")

	cmd.AddCommand(newSignupCmd(deps))
	cmd.AddCommand(newLoginCmd(deps))
	cmd.AddCommand(newUserCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newSchemaCmd())

	return cmd
}
