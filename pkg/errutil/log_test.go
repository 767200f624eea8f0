// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippou/nippou/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("ACCOUNT_SIGNUP_FAILED").
		With("username", "alice").
		Errorf("insert failed")

	errutil.LogError(context.Background(), logger, "signup failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "signup failed", entry["msg"])
	assert.Equal(t, "ACCOUNT_SIGNUP_FAILED", entry["code"])
	require.IsType(t, map[string]any{}, entry["context"])
	assert.Equal(t, "alice", entry["context"].(map[string]any)["username"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(context.Background(), logger, "login failed", errors.New("connection refused"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "connection refused")
	assert.NotContains(t, entry, "code")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "AUTH_INVALID_CREDENTIALS",
		errutil.Code(oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")))
	assert.Empty(t, errutil.Code(errors.New("plain")))
	assert.Empty(t, errutil.Code(oops.Errorf("no code")))
}
