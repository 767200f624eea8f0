// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

// Package sqlite implements identity.Repository on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/nippou/nippou/internal/identity"
)

//go:embed schema.sql
var schemaSQL string

const selectUser = `
	SELECT id, username, email, password_hash, is_active, created_at, updated_at
	FROM users
`

// UserRepository implements identity.Repository over SQLite.
type UserRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// users schema.
func Open(ctx context.Context, path string) (*UserRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, oops.Code("SQLITE_PATH_REQUIRED").Errorf("database path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).With("operation", "ping").Wrap(err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, oops.Code("SQLITE_SCHEMA_FAILED").With("path", path).Wrap(err)
	}

	return &UserRepository{db: db}, nil
}

// Close releases the database handle.
func (r *UserRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, rec *identity.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, email, password_hash, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID.String(),
		rec.Username,
		rec.Email,
		rec.PasswordHash,
		rec.Active,
		toMillis(rec.CreatedAt),
		toMillis(rec.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_DUPLICATE").
				With("username", rec.Username).
				Wrap(identity.ErrDuplicate)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", rec.Username).
			Wrap(err)
	}
	return nil
}

// GetByUsername retrieves a user by username (case-insensitive).
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.Record, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE LOWER(username) = LOWER(?)`, username)

	rec, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("username", username).
			Wrap(err)
	}
	return rec, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.Record, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE LOWER(email) = LOWER(?)`, email)

	rec, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("email", email).
			Wrap(err)
	}
	return rec, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	return r.update(ctx, "USER_UPDATE_PASSWORD_FAILED",
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		id, passwordHash)
}

// SetActive enables or disables a user.
func (r *UserRepository) SetActive(ctx context.Context, id ulid.ULID, active bool) error {
	return r.update(ctx, "USER_SET_ACTIVE_FAILED",
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		id, active)
}

func (r *UserRepository) update(ctx context.Context, code, query string, id ulid.ULID, value any) error {
	result, err := r.db.ExecContext(ctx, query, value, toMillis(time.Now()), id.String())
	if err != nil {
		return oops.Code(code).With("id", id.String()).Wrap(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return oops.Code(code).With("id", id.String()).With("operation", "rows affected").Wrap(err)
	}
	if n == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

func scanUser(row *sql.Row) (*identity.Record, error) {
	var (
		idStr              string
		createdAt, updated int64
		rec                identity.Record
	)
	if err := row.Scan(&idStr, &rec.Username, &rec.Email, &rec.PasswordHash, &rec.Active, &createdAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers map not-found
		}
		return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").With("id", idStr).Wrap(err)
	}
	rec.ID = id
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updated)
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ identity.Repository = (*UserRepository)(nil)
