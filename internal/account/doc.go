// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

// Package account validates registration and login input and hands the
// credentials to an authentication backend.
//
// # Flow
//
// Both entry points take the raw form mapping submitted by the caller:
//   - Service.Signup - extracts Credentials, checks the SignupForm, creates
//     the user through the Backend and authenticates it straight away
//   - Service.Authorize - extracts the login fields and authenticates them
//     without running the form checks
//
// Password hashing and persistence belong to the Backend. The identity
// package provides the default implementation.
package account
