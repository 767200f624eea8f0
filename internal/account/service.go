// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nippou/nippou/pkg/errutil"
)

const tracerName = "github.com/nippou/nippou/internal/account"

// Service exposes signup and login. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	backend   Backend
	policy    PasswordPolicy
	emailRule *EmailRule
	logger    *slog.Logger
	metrics   Recorder
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service) error

// WithPolicy replaces the default password policy.
func WithPolicy(p PasswordPolicy) Option {
	return func(s *Service) error {
		if p.MinLength < 1 || len(p.Classes) == 0 {
			return oops.Code("ACCOUNT_CONFIG_INVALID").Errorf("password policy is incomplete")
		}
		s.policy = p
		return nil
	}
}

// WithEmailRule restricts signup to the rule's domains.
func WithEmailRule(r *EmailRule) Option {
	return func(s *Service) error {
		s.emailRule = r
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) error {
		if l == nil {
			return oops.Code("ACCOUNT_CONFIG_INVALID").Errorf("logger is required")
		}
		s.logger = l
		return nil
	}
}

// WithMetrics sets the outcome recorder.
func WithMetrics(r Recorder) Option {
	return func(s *Service) error {
		if r == nil {
			return oops.Code("ACCOUNT_CONFIG_INVALID").Errorf("metrics recorder is required")
		}
		s.metrics = r
		return nil
	}
}

// NewService creates a Service backed by backend.
func NewService(backend Backend, opts ...Option) (*Service, error) {
	if backend == nil {
		return nil, oops.Code("ACCOUNT_CONFIG_INVALID").Errorf("backend is required")
	}
	s := &Service{
		backend: backend,
		policy:  DefaultPasswordPolicy(),
		logger:  slog.Default(),
		metrics: nopRecorder{},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Signup validates a signup submission, creates the user and returns it
// authenticated.
//
// A rejected form yields ACCOUNT_VALIDATION_FAILED wrapping a
// *ValidationError whose message is the first failure in field order.
// Signing up twice with the same email, or with an email whose local part
// matches an existing username, fails with ACCOUNT_ALREADY_EXISTS.
func (s *Service) Signup(ctx context.Context, params map[string]string) (*User, error) {
	ctx, span := s.tracer.Start(ctx, "account.Signup")
	defer span.End()

	creds, err := CredentialsFromParams(params)
	if err != nil {
		s.metrics.RecordSignup(ResultInvalid)
		span.SetStatus(codes.Error, "missing field")
		return nil, err
	}

	form := NewSignupForm(creds, s.policy, s.emailRule)
	if !form.Valid() {
		verr := &ValidationError{Errors: form.Errors()}
		s.logger.InfoContext(ctx, "signup rejected", "fields", verr.Errors.Fields())
		s.metrics.RecordSignup(ResultInvalid)
		span.SetStatus(codes.Error, "validation failed")
		return nil, oops.Code("ACCOUNT_VALIDATION_FAILED").
			With("fields", verr.Errors.Fields()).
			Wrap(verr)
	}

	cleaned := form.Cleaned()
	username := cleaned.Username()
	span.SetAttributes(attribute.String("account.username", username))

	if _, err := s.backend.CreateUser(ctx, username, cleaned.Email, cleaned.Password); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create user failed")
		if errors.Is(err, ErrDuplicateUser) {
			s.logger.InfoContext(ctx, "signup rejected: user exists", "username", username)
			s.metrics.RecordSignup(ResultDuplicate)
			return nil, duplicateUser(err, username, cleaned.Email)
		}
		errutil.LogError(ctx, s.logger, "signup failed", err)
		s.metrics.RecordSignup(ResultError)
		return nil, oops.Code("ACCOUNT_SIGNUP_FAILED").
			With("operation", "create user").
			With("username", username).
			Wrap(err)
	}

	user, err := s.backend.Authenticate(ctx, username, cleaned.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authenticate new user failed")
		errutil.LogError(ctx, s.logger, "signup failed", err)
		s.metrics.RecordSignup(ResultError)
		return nil, oops.Code("ACCOUNT_SIGNUP_FAILED").
			With("operation", "authenticate new user").
			With("username", username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user signed up", "username", user.Username, "user_id", user.ID.String())
	s.metrics.RecordSignup(ResultSuccess)
	return user, nil
}

// duplicateUser names the taken value in the message. Every variant wraps
// ErrDuplicateUser.
func duplicateUser(err error, username, email string) error {
	dup := oops.Code("ACCOUNT_ALREADY_EXISTS").With("username", username)
	switch {
	case errors.Is(err, ErrEmailTaken):
		return dup.With("taken", "email").
			Wrapf(ErrEmailTaken, "an account for %s already exists", email)
	case errors.Is(err, ErrUsernameTaken):
		return dup.With("taken", "username").
			Wrapf(ErrUsernameTaken, "the username %s is already taken", username)
	default:
		return dup.Wrapf(ErrDuplicateUser, "an account with username %s or email %s already exists", username, email)
	}
}

// Authorize authenticates a login submission. Only email and password are
// read; neither is checked against the password policy or email grammar.
// Unknown users, wrong passwords and disabled accounts all fail with
// AUTH_INVALID_CREDENTIALS and the same message.
func (s *Service) Authorize(ctx context.Context, params map[string]string) (*User, error) {
	ctx, span := s.tracer.Start(ctx, "account.Authorize")
	defer span.End()

	creds, err := LoginCredentialsFromParams(params)
	if err != nil {
		s.metrics.RecordLogin(ResultInvalid)
		span.SetStatus(codes.Error, "missing field")
		return nil, err
	}

	username := creds.Username()
	span.SetAttributes(attribute.String("account.username", username))

	user, err := s.backend.Authenticate(ctx, username, creds.Password)
	if err != nil {
		span.SetStatus(codes.Error, "authentication failed")
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.WarnContext(ctx, "login rejected", "username", username)
			s.metrics.RecordLogin(ResultRejected)
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf(InvalidCredentialsMessage)
		}
		span.RecordError(err)
		errutil.LogError(ctx, s.logger, "login failed", err)
		s.metrics.RecordLogin(ResultError)
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "authenticate").
			With("username", username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user logged in", "username", user.Username, "user_id", user.ID.String())
	s.metrics.RecordLogin(ResultSuccess)
	return user, nil
}
