// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nippou/nippou/internal/account"
	"github.com/nippou/nippou/internal/identity"
	"github.com/nippou/nippou/internal/identity/identitytest"
	"github.com/nippou/nippou/internal/identity/postgres"
	"github.com/nippou/nippou/internal/store"
)

var _ = Describe("UserRepository", func() {
	var (
		ctx       context.Context
		container *tcpostgres.PostgresContainer
		pool      *pgxpool.Pool
		repo      *postgres.UserRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		container, err = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("nippou_test"),
			tcpostgres.WithUsername("nippou"),
			tcpostgres.WithPassword("nippou"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = store.Connect(ctx, connStr, store.ConnectOptions{Retries: 3})
		Expect(err).NotTo(HaveOccurred())
		repo = postgres.NewUserRepository(pool)
	})

	AfterEach(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	newRecord := func(username, email string) *identity.Record {
		rec, err := identity.NewRecord(username, email, "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA")
		Expect(err).NotTo(HaveOccurred())
		return rec
	}

	It("round-trips a user", func() {
		rec := newRecord("alice", "alice@example.com")
		Expect(repo.Create(ctx, rec)).To(Succeed())

		got, err := repo.GetByUsername(ctx, "ALICE")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(rec.ID))
		Expect(got.Email).To(Equal("alice@example.com"))
		Expect(got.Active).To(BeTrue())

		got, err = repo.GetByEmail(ctx, "Alice@Example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Username).To(Equal("alice"))
	})

	It("rejects case-insensitive duplicates", func() {
		Expect(repo.Create(ctx, newRecord("bob", "bob@example.com"))).To(Succeed())

		err := repo.Create(ctx, newRecord("BOB", "other@example.com"))
		Expect(errors.Is(err, identity.ErrDuplicate)).To(BeTrue())

		err = repo.Create(ctx, newRecord("robert", "BOB@example.com"))
		Expect(errors.Is(err, account.ErrDuplicateUser)).To(BeTrue())
	})

	It("updates password and active flag", func() {
		rec := newRecord("carol", "carol@example.com")
		Expect(repo.Create(ctx, rec)).To(Succeed())

		Expect(repo.UpdatePassword(ctx, rec.ID, "new-hash")).To(Succeed())
		Expect(repo.SetActive(ctx, rec.ID, false)).To(Succeed())

		got, err := repo.GetByUsername(ctx, "carol")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.PasswordHash).To(Equal("new-hash"))
		Expect(got.Active).To(BeFalse())
	})

	It("reports missing users", func() {
		_, err := repo.GetByUsername(ctx, "nobody")
		Expect(errors.Is(err, identity.ErrNotFound)).To(BeTrue())
	})

	It("backs the account service end to end", func() {
		hasher, err := identity.NewArgon2idHasher(identitytest.FastParams())
		Expect(err).NotTo(HaveOccurred())
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		backend, err := identity.NewBackend(repo, hasher, logger)
		Expect(err).NotTo(HaveOccurred())
		svc, err := account.NewService(backend, account.WithLogger(logger))
		Expect(err).NotTo(HaveOccurred())

		user, err := svc.Signup(ctx, map[string]string{
			"email": "a@b.com", "password": "abc12345", "password_confirm": "abc12345",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Username).To(Equal("a"))

		user, err = svc.Authorize(ctx, map[string]string{"email": "a@b.com", "password": "abc12345"})
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Email).To(Equal("a@b.com"))

		_, err = svc.Authorize(ctx, map[string]string{"email": "a@b.com", "password": "wrong1234"})
		Expect(err).To(MatchError(account.InvalidCredentialsMessage))
	})
})
