// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

// Package store manages the PostgreSQL connection pool and schema migrations
// for the user table.
package store
