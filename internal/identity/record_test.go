// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippou/nippou/internal/identity"
	"github.com/nippou/nippou/pkg/errutil"
)

func TestNewRecord(t *testing.T) {
	t.Run("creates active record", func(t *testing.T) {
		rec, err := identity.NewRecord("a", "a@b.com", "$argon2id$hash")
		require.NoError(t, err)
		assert.NotZero(t, rec.ID)
		assert.True(t, rec.Active)
		assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

		user := rec.User()
		assert.Equal(t, rec.ID, user.ID)
		assert.Equal(t, "a", user.Username)
		assert.Equal(t, "a@b.com", user.Email)
		assert.True(t, user.Active)
	})

	tests := []struct {
		name     string
		username string
		email    string
		hash     string
		code     string
	}{
		{"empty username", "", "a@b.com", "h", "IDENTITY_INVALID_USERNAME"},
		{"empty email", "a", "", "h", "IDENTITY_INVALID_EMAIL"},
		{"empty hash", "a", "a@b.com", "", "IDENTITY_INVALID_HASH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := identity.NewRecord(tt.username, tt.email, tt.hash)
			require.Error(t, err)
			assert.Nil(t, rec)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}
