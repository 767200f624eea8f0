// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippou/nippou/internal/account"
	"github.com/nippou/nippou/pkg/errutil"
)

func TestPasswordPolicy_ValidateLength(t *testing.T) {
	p := account.DefaultPasswordPolicy()

	for n := 0; n < account.DefaultMinPasswordLength; n++ {
		fe := p.ValidateLength(strings.Repeat("a", n))
		require.NotNil(t, fe, "length %d should fail", n)
		assert.Equal(t, account.CodeMinLength, fe.Code)
		assert.Contains(t, fe.Message, "8")
	}
	for _, n := range []int{8, 9, 64} {
		assert.Nil(t, p.ValidateLength(strings.Repeat("a", n)), "length %d should pass", n)
	}

	t.Run("counts characters not bytes", func(t *testing.T) {
		assert.NotNil(t, p.ValidateLength("日本語パスワ1"))
		assert.Nil(t, p.ValidateLength("日本語パスワード1"))
	})
}

func TestPasswordPolicy_ValidateVariety(t *testing.T) {
	p := account.DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"letters and digits", "abc12345", true},
		{"digit first", "1abcdefg", true},
		{"single letter among digits", "1234567x", true},
		{"uppercase counts as letter", "ABC12345", true},
		{"digits only", "12345678", false},
		{"letters only", "abcdefgh", false},
		{"non ascii letters do not count", "日本語12345", false},
		{"symbols only", "!@#$%^&*", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := p.ValidateVariety(tt.password)
			if tt.ok {
				assert.Nil(t, fe)
				return
			}
			require.NotNil(t, fe)
			assert.Equal(t, account.CodeVariety, fe.Code)
			assert.Equal(t, "password must contain at least one letter and one digit", fe.Message)
		})
	}
}

func TestPasswordPolicy_ValidateReportsBothChecks(t *testing.T) {
	p := account.DefaultPasswordPolicy()

	errs := p.Validate("1234")
	require.Len(t, errs, 2)
	assert.Equal(t, account.CodeMinLength, errs[0].Code)
	assert.Equal(t, account.CodeVariety, errs[1].Code)

	assert.Empty(t, p.Validate("abc12345"))
}

func TestNewPasswordPolicy(t *testing.T) {
	t.Run("custom classes", func(t *testing.T) {
		p, err := account.NewPasswordPolicy(10, []account.ClassSpec{
			{Name: "letter", Pattern: "[a-zA-Z]"},
			{Name: "digit", Pattern: "[0-9]"},
			{Name: "symbol", Pattern: `[^a-zA-Z0-9]`},
		})
		require.NoError(t, err)
		assert.Equal(t, 10, p.MinLength)

		fe := p.ValidateVariety("abc1234567")
		require.NotNil(t, fe)
		assert.Equal(t, "password must contain at least one letter, one digit and one symbol", fe.Message)
		assert.Nil(t, p.ValidateVariety("abc12345!!"))
	})

	t.Run("single class message", func(t *testing.T) {
		p, err := account.NewPasswordPolicy(1, []account.ClassSpec{{Name: "digit", Pattern: "[0-9]"}})
		require.NoError(t, err)
		fe := p.ValidateVariety("abc")
		require.NotNil(t, fe)
		assert.Equal(t, "password must contain at least one digit", fe.Message)
	})

	invalid := []struct {
		name    string
		min     int
		classes []account.ClassSpec
	}{
		{"zero length", 0, []account.ClassSpec{{Name: "digit", Pattern: "[0-9]"}}},
		{"no classes", 8, nil},
		{"bad pattern", 8, []account.ClassSpec{{Name: "broken", Pattern: "[a-"}}},
		{"unnamed class", 8, []account.ClassSpec{{Pattern: "[0-9]"}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := account.NewPasswordPolicy(tt.min, tt.classes)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "POLICY_INVALID")
		})
	}
}
