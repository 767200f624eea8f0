// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Params are the argon2id cost parameters.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	SaltLen   uint32
	KeyLen    uint32
}

// DefaultParams returns the OWASP-recommended argon2id parameters.
func DefaultParams() Params {
	return Params{
		Time:      1,
		MemoryKiB: 64 * 1024,
		Threads:   4,
		SaltLen:   16,
		KeyLen:    32,
	}
}

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("IDENTITY_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces an encoded hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade reports whether hash was produced with other parameters
	// and should be recomputed.
	NeedsUpgrade(hash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id, encoding
// hashes in PHC string format.
type Argon2idHasher struct {
	params Params
	prefix string
}

// NewArgon2idHasher creates a hasher with the given parameters.
func NewArgon2idHasher(p Params) (*Argon2idHasher, error) {
	switch {
	case p.Time == 0:
		return nil, oops.Code("IDENTITY_HASHER_INVALID").Errorf("time must be positive")
	case p.MemoryKiB < 8*uint32(p.Threads):
		return nil, oops.Code("IDENTITY_HASHER_INVALID").
			With("memory_kib", p.MemoryKiB).
			With("threads", p.Threads).
			Errorf("memory must be at least 8 KiB per thread")
	case p.Threads == 0:
		return nil, oops.Code("IDENTITY_HASHER_INVALID").Errorf("threads must be positive")
	case p.SaltLen < 8:
		return nil, oops.Code("IDENTITY_HASHER_INVALID").Errorf("salt length must be at least 8 bytes")
	case p.KeyLen < 16:
		return nil, oops.Code("IDENTITY_HASHER_INVALID").Errorf("key length must be at least 16 bytes")
	}
	return &Argon2idHasher{
		params: p,
		prefix: fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$", argon2.Version, p.MemoryKiB, p.Time, p.Threads),
	}, nil
}

// Hash produces an argon2id hash of the password:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("IDENTITY_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLen)

	return h.prefix +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(key), nil
}

// Verify checks the password against an encoded hash, using the
// parameters recorded in the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, oops.Code("IDENTITY_INVALID_HASH").Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return false, oops.Code("IDENTITY_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("IDENTITY_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return false, oops.Code("IDENTITY_INVALID_HASH").Errorf("unsupported argon2 version: %d", version)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("IDENTITY_INVALID_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("IDENTITY_INVALID_HASH").Wrap(err)
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("IDENTITY_INVALID_HASH").Wrap(err)
	}

	// threads must fit in uint8 without truncation
	if threads == 0 || threads > 255 {
		return false, oops.Code("IDENTITY_INVALID_HASH").Errorf("invalid threads value %d", threads)
	}
	if time == 0 {
		return false, oops.Code("IDENTITY_INVALID_HASH").Errorf("invalid time value 0")
	}

	keyLen := len(expected)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("IDENTITY_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsUpgrade reports whether the hash is not argon2id or was produced
// with different cost parameters than this hasher's.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, h.prefix)
}

// DummyHash returns a well-formed hash, under this hasher's parameters,
// that matches no password. Verifying against it costs the same as a
// real verification.
func (h *Argon2idHasher) DummyHash() string {
	salt := make([]byte, h.params.SaltLen)
	key := make([]byte, h.params.KeyLen)
	return h.prefix +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(key)
}
