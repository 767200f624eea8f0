// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package identity

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/nippou/nippou/internal/account"
)

// Record is a stored user, including the password hash.
type Record struct {
	ID           ulid.ULID
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewRecord creates an active Record with a fresh ID.
func NewRecord(username, email, passwordHash string) (*Record, error) {
	if username == "" {
		return nil, oops.Code("IDENTITY_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if email == "" {
		return nil, oops.Code("IDENTITY_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("IDENTITY_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	now := time.Now().UTC()
	return &Record{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// User returns the handle handed to callers. The hash stays behind.
func (r *Record) User() *account.User {
	return &account.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Repository manages user persistence.
type Repository interface {
	// Create stores a new user.
	// Returns ErrDuplicate if the username or email is taken (case-insensitive).
	Create(ctx context.Context, rec *Record) error

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*Record, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Record, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// SetActive enables or disables a user. Disabled users cannot log in.
	SetActive(ctx context.Context, id ulid.ULID, active bool) error
}
