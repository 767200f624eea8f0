// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package identity

import (
	"errors"
	"fmt"

	"github.com/nippou/nippou/internal/account"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a username or email is already stored.
	// It matches account.ErrDuplicateUser under errors.Is.
	ErrDuplicate = fmt.Errorf("duplicate user: %w", account.ErrDuplicateUser)
)
