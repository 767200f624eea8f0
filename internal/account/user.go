// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// User is the handle a Backend returns for a created or authenticated
// account.
type User struct {
	ID        ulid.ULID
	Username  string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Backend creates and authenticates user identities. Hashing and storage
// are its concern.
type Backend interface {
	// CreateUser persists a new identity.
	// Returns an error wrapping ErrEmailTaken or ErrUsernameTaken when the
	// email or username is taken, or ErrDuplicateUser when the store rejects
	// the insert without saying which.
	CreateUser(ctx context.Context, username, email, password string) (*User, error)

	// Authenticate resolves credentials to an active user.
	// Returns an error wrapping ErrInvalidCredentials when they do not.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}

// Outcome labels passed to a Recorder.
const (
	ResultSuccess   = "success"
	ResultInvalid   = "invalid"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
	ResultError     = "error"
)

// Recorder receives signup and login outcomes.
type Recorder interface {
	RecordSignup(result string)
	RecordLogin(result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSignup(string) {}
func (nopRecorder) RecordLogin(string)  {}
