// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required key is absent from the
	// submitted parameters.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidCredentials is returned by a Backend when the credentials do
	// not resolve to an active user. Unknown users, wrong passwords and
	// disabled accounts all map to it.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUser is returned by a Backend when the username or email is
	// already taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrEmailTaken is returned by a Backend when the email is already
	// registered. It matches ErrDuplicateUser under errors.Is.
	ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrDuplicateUser)

	// ErrUsernameTaken is returned by a Backend when the username derived
	// from the email belongs to another account. It matches ErrDuplicateUser
	// under errors.Is.
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", ErrDuplicateUser)
)

// InvalidCredentialsMessage is the only message shown for a failed login.
const InvalidCredentialsMessage = "invalid username or password"
