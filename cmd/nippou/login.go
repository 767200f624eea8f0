// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nippou/nippou/internal/account"
)

func newLoginCmd(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check login credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := formParams(cmd, account.FieldEmail, account.FieldPassword)
			return withApp(cmd, deps, func(a *app) error {
				user, err := a.service.Authorize(cmd.Context(), params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password")
	return cmd
}
