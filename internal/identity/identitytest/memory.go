// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

// Package identitytest provides test helpers for the identity backend.
package identitytest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nippou/nippou/internal/identity"
)

// FastParams are argon2id parameters cheap enough for tests.
func FastParams() identity.Params {
	return identity.Params{Time: 1, MemoryKiB: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
}

// MemoryRepository is an identity.Repository backed by a map.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[ulid.ULID]identity.Record

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[ulid.ULID]identity.Record)}
}

// Create stores a copy of rec.
func (m *MemoryRepository) Create(_ context.Context, rec *identity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Username, rec.Username) || strings.EqualFold(u.Email, rec.Email) {
			return identity.ErrDuplicate
		}
	}
	m.users[rec.ID] = *rec
	return nil
}

// GetByUsername returns a copy of the matching record.
func (m *MemoryRepository) GetByUsername(_ context.Context, username string) (*identity.Record, error) {
	return m.find(func(r identity.Record) bool { return strings.EqualFold(r.Username, username) })
}

// GetByEmail returns a copy of the matching record.
func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*identity.Record, error) {
	return m.find(func(r identity.Record) bool { return strings.EqualFold(r.Email, email) })
}

// UpdatePassword replaces the hash of the record with id.
func (m *MemoryRepository) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	return m.update(id, func(r *identity.Record) { r.PasswordHash = passwordHash })
}

// SetActive sets the active flag of the record with id.
func (m *MemoryRepository) SetActive(_ context.Context, id ulid.ULID, active bool) error {
	return m.update(id, func(r *identity.Record) { r.Active = active })
}

// Len returns the number of stored records.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemoryRepository) find(match func(identity.Record) bool) (*identity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if match(u) {
			rec := u
			return &rec, nil
		}
	}
	return nil, identity.ErrNotFound
}

func (m *MemoryRepository) update(id ulid.ULID, fn func(*identity.Record)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	rec, ok := m.users[id]
	if !ok {
		return identity.ErrNotFound
	}
	fn(&rec)
	rec.UpdatedAt = time.Now().UTC()
	m.users[id] = rec
	return nil
}

var _ identity.Repository = (*MemoryRepository)(nil)
