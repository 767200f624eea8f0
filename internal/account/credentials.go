// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

import (
	"strings"

	"github.com/samber/oops"
)

// Form field names.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldPasswordConfirm = "password_confirm"
)

// credentialFields lists the keys a signup submission must carry, in order.
var credentialFields = []string{FieldEmail, FieldPassword, FieldPasswordConfirm}

// Credentials is the fixed-shape record built from a submitted form.
// Nothing is validated at construction.
type Credentials struct {
	Email           string
	Password        string
	PasswordConfirm string
}

// Username returns the local part of the email: everything before the
// first '@'. An email without '@' is returned whole.
func (c Credentials) Username() string {
	local, _, _ := strings.Cut(c.Email, "@")
	return local
}

// CredentialsFromParams builds Credentials from a signup submission.
// All of email, password and password_confirm must be present; values are
// kept verbatim and unknown keys are ignored.
func CredentialsFromParams(params map[string]string) (Credentials, error) {
	values := make([]string, len(credentialFields))
	for i, field := range credentialFields {
		v, ok := params[field]
		if !ok {
			return Credentials{}, missingField(field)
		}
		values[i] = v
	}
	return Credentials{
		Email:           values[0],
		Password:        values[1],
		PasswordConfirm: values[2],
	}, nil
}

// LoginCredentialsFromParams builds Credentials from a login submission.
// Only email and password are required; password_confirm is copied when
// present but never used.
func LoginCredentialsFromParams(params map[string]string) (Credentials, error) {
	email, ok := params[FieldEmail]
	if !ok {
		return Credentials{}, missingField(FieldEmail)
	}
	password, ok := params[FieldPassword]
	if !ok {
		return Credentials{}, missingField(FieldPassword)
	}
	return Credentials{
		Email:           email,
		Password:        password,
		PasswordConfirm: params[FieldPasswordConfirm],
	}, nil
}

func missingField(field string) error {
	return oops.Code("ACCOUNT_MISSING_FIELD").
		With("field", field).
		Wrapf(ErrMissingField, "%s", field)
}
