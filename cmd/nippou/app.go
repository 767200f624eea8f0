// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/nippou/nippou/internal/account"
	"github.com/nippou/nippou/internal/config"
	"github.com/nippou/nippou/internal/identity"
	"github.com/nippou/nippou/internal/logging"
	"github.com/nippou/nippou/internal/observability"
	"github.com/nippou/nippou/pkg/errutil"
)

// app is the wired account stack for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	backend *identity.Backend
	service *account.Service
	closeDB func() error
}

func loadConfig(cmd *cobra.Command, deps Deps) (*config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	opts := config.Options{File: file, Flags: cmd.Flags()}
	if file == "" {
		// No HOME means no default file; defaults and flags still apply.
		if def, err := deps.DefaultConfigFile(); err == nil {
			opts.DefaultFile = def
		}
	}
	return config.Load(opts)
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.Setup(version, cfg.Log.Format, cfg.Log.SlogLevel(), cmd.ErrOrStderr())
}

func openApp(cmd *cobra.Command, deps Deps) (*app, error) {
	cfg, err := loadConfig(cmd, deps)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg)

	policy, err := cfg.PasswordPolicy.Policy()
	if err != nil {
		return nil, err
	}
	rule, err := cfg.Signup.EmailRule()
	if err != nil {
		return nil, err
	}
	hasher, err := identity.NewArgon2idHasher(cfg.Hasher.Params())
	if err != nil {
		return nil, err
	}

	repo, closeDB, err := deps.OpenRepository(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "open user store").Wrap(err)
	}

	backend, err := identity.NewBackend(repo, hasher, logger)
	if err != nil {
		_ = closeDB()
		return nil, err
	}

	metrics := observability.NewMetrics()
	service, err := account.NewService(backend,
		account.WithPolicy(policy),
		account.WithEmailRule(rule),
		account.WithLogger(logger),
		account.WithMetrics(metrics),
	)
	if err != nil {
		_ = closeDB()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		backend: backend,
		service: service,
		closeDB: closeDB,
	}, nil
}

// Close releases the user store and flushes metrics to the textfile.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if err := a.closeDB(); err != nil {
		errs = append(errs, oops.Code("DB_CLOSE_FAILED").Wrap(err))
	}
	if path := a.cfg.Metrics.File; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		errutil.LogError(ctx, a.logger, "shutdown failed", err)
	}
	return err
}

// withApp opens the app, runs fn and closes the app, returning the first
// error.
func withApp(cmd *cobra.Command, deps Deps, fn func(a *app) error) (err error) {
	a, err := openApp(cmd, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(cmd.Context()); err == nil {
			err = closeErr
		}
	}()
	return fn(a)
}
