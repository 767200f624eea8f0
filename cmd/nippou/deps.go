// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/nippou/nippou/internal/config"
	"github.com/nippou/nippou/internal/identity"
	"github.com/nippou/nippou/internal/identity/postgres"
	"github.com/nippou/nippou/internal/identity/sqlite"
	"github.com/nippou/nippou/internal/store"
	"github.com/nippou/nippou/internal/xdg"
)

// Deps holds injectable dependencies. Nil fields use the production
// implementation.
type Deps struct {
	// OpenRepository opens the user store selected by the database config.
	// Default: openRepository
	OpenRepository func(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (identity.Repository, func() error, error)

	// NewMigrator creates a schema migrator for a PostgreSQL URL.
	// Default: store.NewMigrator
	NewMigrator func(databaseURL string) (Migrator, error)

	// DefaultConfigFile returns the config path used when --config is unset.
	// Default: xdg.ConfigFile
	DefaultConfigFile func() (string, error)
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	Close() error
}

func (d Deps) withDefaults() Deps {
	if d.OpenRepository == nil {
		d.OpenRepository = openRepository
	}
	if d.NewMigrator == nil {
		d.NewMigrator = func(url string) (Migrator, error) {
			return store.NewMigrator(url)
		}
	}
	if d.DefaultConfigFile == nil {
		d.DefaultConfigFile = xdg.ConfigFile
	}
	return d
}

// isPostgresURL reports whether url selects the PostgreSQL backend.
func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// sqlitePath resolves the SQLite file for url, defaulting to the XDG data
// directory.
func sqlitePath(url string) (string, error) {
	path := strings.TrimPrefix(url, "sqlite://")
	if path != "" {
		return path, nil
	}
	return xdg.DatabaseFile()
}

func openRepository(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (identity.Repository, func() error, error) {
	if isPostgresURL(cfg.URL) {
		pool, err := store.Connect(ctx, cfg.URL, store.ConnectOptions{
			Retries: uint64(cfg.ConnectRetries), //nolint:gosec // validated non-negative
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		closer := func() error {
			pool.Close()
			return nil
		}
		return postgres.NewUserRepository(pool), closer, nil
	}

	path, err := sqlitePath(cfg.URL)
	if err != nil {
		return nil, nil, oops.Code("CONFIG_INVALID").With("operation", "resolve database path").Wrap(err)
	}
	if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, nil, err
	}
	repo, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	logger.DebugContext(ctx, "using sqlite user store", "path", path)
	return repo, repo.Close, nil
}
