// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

// Package identity is the default account.Backend: it hashes passwords
// with argon2id and persists users through a Repository.
//
// Repository implementations live in the postgres and sqlite
// subpackages.
package identity
