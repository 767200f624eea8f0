// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/nippou/nippou/internal/account"
	"github.com/nippou/nippou/pkg/errutil"
)

// fallbackDummyHash is verified against when a user doesn't exist and the
// hasher cannot produce its own dummy. It matches no password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const fallbackDummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Backend implements account.Backend over a Repository.
type Backend struct {
	users     Repository
	hasher    PasswordHasher
	logger    *slog.Logger
	dummyHash string
}

// NewBackend creates a Backend. All dependencies are required.
func NewBackend(users Repository, hasher PasswordHasher, logger *slog.Logger) (*Backend, error) {
	if users == nil {
		return nil, oops.Code("IDENTITY_CONFIG_INVALID").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("IDENTITY_CONFIG_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("IDENTITY_CONFIG_INVALID").Errorf("logger is required")
	}

	dummy := fallbackDummyHash
	if d, ok := hasher.(interface{ DummyHash() string }); ok {
		dummy = d.DummyHash()
	}

	return &Backend{
		users:     users,
		hasher:    hasher,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// CreateUser hashes the password and stores a new active user. The email is
// checked before the username so a repeated signup reports the email.
func (b *Backend) CreateUser(ctx context.Context, username, email, password string) (*account.User, error) {
	if err := b.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := b.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	rec, err := NewRecord(username, email, hash)
	if err != nil {
		return nil, err
	}

	if err := b.users.Create(ctx, rec); err != nil {
		return nil, oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "persist user").
			With("username", username).
			Wrap(err)
	}

	return rec.User(), nil
}

// checkAvailable looks up email and username. The unique indexes remain
// the guard against concurrent signups; Create maps those to ErrDuplicate.
func (b *Backend) checkAvailable(ctx context.Context, username, email string) error {
	_, err := b.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return oops.Code("IDENTITY_EMAIL_TAKEN").
			With("email", email).
			Wrap(account.ErrEmailTaken)
	case !errors.Is(err, ErrNotFound):
		return oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	_, err = b.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return oops.Code("IDENTITY_USERNAME_TAKEN").
			With("username", username).
			Wrap(account.ErrUsernameTaken)
	case !errors.Is(err, ErrNotFound):
		return oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}
	return nil
}

// Authenticate resolves username and password to an active user.
// Unknown users are verified against a dummy hash so the response time
// does not reveal whether the username exists.
func (b *Backend) Authenticate(ctx context.Context, username, password string) (*account.User, error) {
	rec, lookupErr := b.users.GetByUsername(ctx, username)

	targetHash := b.dummyHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = rec.PasswordHash
		exists = true
	case !errors.Is(lookupErr, ErrNotFound):
		return nil, oops.Code("IDENTITY_AUTH_FAILED").
			With("operation", "get user by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := b.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !exists {
			return nil, invalidCredentials()
		}
		return nil, oops.Code("IDENTITY_AUTH_FAILED").
			With("operation", "verify password").
			With("user_id", rec.ID.String()).
			Wrap(verifyErr)
	}

	// Disabled accounts are checked after verification to keep timing flat.
	if !exists || !valid || !rec.Active {
		return nil, invalidCredentials()
	}

	if b.hasher.NeedsUpgrade(rec.PasswordHash) {
		b.upgradeHash(ctx, rec, password)
	}

	return rec.User(), nil
}

// SetActive enables or disables the user with the given username.
func (b *Backend) SetActive(ctx context.Context, username string, active bool) error {
	rec, err := b.users.GetByUsername(ctx, username)
	if err != nil {
		return oops.Code("IDENTITY_SET_ACTIVE_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	if err := b.users.SetActive(ctx, rec.ID, active); err != nil {
		return oops.Code("IDENTITY_SET_ACTIVE_FAILED").
			With("operation", "update active flag").
			With("user_id", rec.ID.String()).
			Wrap(err)
	}
	b.logger.InfoContext(ctx, "user active flag changed", "username", rec.Username, "active", active)
	return nil
}

// upgradeHash rehashes with the current parameters. Failures are logged;
// authentication succeeds regardless.
func (b *Backend) upgradeHash(ctx context.Context, rec *Record, password string) {
	newHash, err := b.hasher.Hash(password)
	if err != nil {
		errutil.LogError(ctx, b.logger, "rehash password failed", err)
		return
	}
	if err := b.users.UpdatePassword(ctx, rec.ID, newHash); err != nil {
		errutil.LogError(ctx, b.logger, "store upgraded password hash failed", err)
		return
	}
	rec.PasswordHash = newHash
	b.logger.DebugContext(ctx, "password hash upgraded", "user_id", rec.ID.String())
}

func invalidCredentials() error {
	return oops.Code("IDENTITY_INVALID_CREDENTIALS").Wrap(account.ErrInvalidCredentials)
}

// Compile-time interface check.
var _ account.Backend = (*Backend)(nil)
