// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nippou/nippou/internal/account"
)

func newSignupCmd(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long: `Register a new account. The username is the part of the email
before the "@". The password must satisfy the configured policy and match
--password-confirm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := formParams(cmd, account.FieldEmail, account.FieldPassword, account.FieldPasswordConfirm)
			return withApp(cmd, deps, func(a *app) error {
				user, err := a.service.Signup(cmd.Context(), params)
				if err != nil {
					printFieldErrors(cmd.ErrOrStderr(), err)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "signed up %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password")
	cmd.Flags().String("password-confirm", "", "password again")
	return cmd
}

// fieldFlags maps form field names to flag names.
var fieldFlags = map[string]string{
	account.FieldEmail:           "email",
	account.FieldPassword:        "password",
	account.FieldPasswordConfirm: "password-confirm",
}

// formParams collects the flags the user set. Unset flags are left out so
// the service reports them as missing.
func formParams(cmd *cobra.Command, fields ...string) map[string]string {
	params := make(map[string]string, len(fields))
	for _, field := range fields {
		f := cmd.Flags().Lookup(fieldFlags[field])
		if f != nil && f.Changed {
			params[field] = f.Value.String()
		}
	}
	return params
}

func printFieldErrors(w io.Writer, err error) {
	var verr *account.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	for _, fe := range verr.Errors.All() {
		_, _ = fmt.Fprintf(w, "%s: %s\n", fe.Field, fe.Message)
	}
}
