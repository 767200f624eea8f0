// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newUserCmd(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage existing accounts",
	}
	cmd.AddCommand(newSetActiveCmd(deps, "enable", true))
	cmd.AddCommand(newSetActiveCmd(deps, "disable", false))
	return cmd
}

func newSetActiveCmd(deps Deps, use string, active bool) *cobra.Command {
	short := "Allow an account to log in"
	if !active {
		short = "Stop an account from logging in"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, err := cmd.Flags().GetString("username")
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}
			if username == "" {
				return oops.Code("CONFIG_INVALID").Errorf("--username is required")
			}
			return withApp(cmd, deps, func(a *app) error {
				if err := a.backend.SetActive(cmd.Context(), username, active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%sd %s\n", use, username)
				return nil
			})
		},
	}
	cmd.Flags().String("username", "", "account username")
	return cmd
}
