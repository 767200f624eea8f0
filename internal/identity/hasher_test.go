// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippou/nippou/internal/identity"
	"github.com/nippou/nippou/internal/identity/identitytest"
	"github.com/nippou/nippou/pkg/errutil"
)

func newTestHasher(t *testing.T) *identity.Argon2idHasher {
	t.Helper()
	h, err := identity.NewArgon2idHasher(identitytest.FastParams())
	require.NoError(t, err)
	return h
}

func TestNewArgon2idHasher(t *testing.T) {
	t.Run("default params are accepted", func(t *testing.T) {
		_, err := identity.NewArgon2idHasher(identity.DefaultParams())
		require.NoError(t, err)
	})

	invalid := []struct {
		name   string
		mutate func(*identity.Params)
	}{
		{"zero time", func(p *identity.Params) { p.Time = 0 }},
		{"zero threads", func(p *identity.Params) { p.Threads = 0 }},
		{"memory below threads minimum", func(p *identity.Params) { p.Threads = 4; p.MemoryKiB = 16 }},
		{"short salt", func(p *identity.Params) { p.SaltLen = 4 }},
		{"short key", func(p *identity.Params) { p.KeyLen = 8 }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			p := identitytest.FastParams()
			tt.mutate(&p)
			_, err := identity.NewArgon2idHasher(p)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "IDENTITY_HASHER_INVALID")
		})
	}
}

func TestHashPassword(t *testing.T) {
	hasher := newTestHasher(t)

	t.Run("produces phc string with configured params", func(t *testing.T) {
		hash, err := hasher.Hash("abc12345")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
		assert.Len(t, strings.Split(hash, "$"), 6)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword1")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword1")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.ErrorIs(t, err, identity.ErrEmptyPassword)
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := newTestHasher(t)

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("abc12345")
		require.NoError(t, err)

		ok, err := hasher.Verify("abc12345", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		hash, err := hasher.Hash("abc12345")
		require.NoError(t, err)

		ok, err := hasher.Verify("xyz98765", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("verifies hashes made with other params", func(t *testing.T) {
		other, err := identity.NewArgon2idHasher(identity.Params{Time: 2, MemoryKiB: 2048, Threads: 2, SaltLen: 8, KeyLen: 16})
		require.NoError(t, err)
		hash, err := other.Hash("abc12345")
		require.NoError(t, err)

		ok, err := hasher.Verify("abc12345", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("dummy hash matches nothing", func(t *testing.T) {
		ok, err := hasher.Verify("abc12345", hasher.DummyHash())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, hasher.NeedsUpgrade(hasher.DummyHash()))
	})

	malformed := []struct {
		name     string
		hash     string
		contains string
	}{
		{"invalid format", "not-a-valid-hash", "invalid hash format"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", "unsupported hash algorithm"},
		{"invalid version format", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA", ""},
		{"unknown version", "$argon2id$v=16$m=65536,t=1,p=4$c2FsdA$aGFzaA", "unsupported argon2 version"},
		{"invalid parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA", ""},
		{"invalid salt base64", "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA", ""},
		{"invalid hash base64", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!", ""},
		{"threads overflow", "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA", "threads value"},
		{"zero threads", "$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$aGFzaA", "threads value"},
		{"zero time", "$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$aGFzaA", "time value"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hasher.Verify("password", tt.hash)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "IDENTITY_INVALID_HASH")
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestNeedsUpgrade(t *testing.T) {
	hasher := newTestHasher(t)

	t.Run("bcrypt hash needs upgrade", func(t *testing.T) {
		assert.True(t, hasher.NeedsUpgrade("$2a$10$N9qo8uLOickgx2ZMRZoMyeIvNq.Uf3hE9tQALNP1Qn9sNp5x5x5x5"))
	})

	t.Run("own hash does not", func(t *testing.T) {
		hash, err := hasher.Hash("abc12345")
		require.NoError(t, err)
		assert.False(t, hasher.NeedsUpgrade(hash))
	})

	t.Run("hash with other params does", func(t *testing.T) {
		assert.True(t, hasher.NeedsUpgrade("$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"))
	})
}
