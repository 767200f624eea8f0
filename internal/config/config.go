// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

// Package config loads nippou configuration from built-in defaults, an
// optional YAML file and command-line flags.
package config

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/oops"

	"github.com/nippou/nippou/internal/account"
	"github.com/nippou/nippou/internal/identity"
)

// Config is the full nippou configuration.
type Config struct {
	Log            LogConfig      `json:"log,omitempty" koanf:"log"`
	Database       DatabaseConfig `json:"database,omitempty" koanf:"database"`
	PasswordPolicy PolicyConfig   `json:"password_policy,omitempty" koanf:"password_policy"`
	Signup         SignupConfig   `json:"signup,omitempty" koanf:"signup"`
	Hasher         HasherConfig   `json:"hasher,omitempty" koanf:"hasher"`
	Metrics        MetricsConfig  `json:"metrics,omitempty" koanf:"metrics"`
}

// LogConfig selects the log encoding and minimum level.
type LogConfig struct {
	Format string `json:"format,omitempty" koanf:"format" jsonschema:"enum=json,enum=text"`
	Level  string `json:"level,omitempty" koanf:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// DatabaseConfig selects the user store. A postgres:// or postgresql:// URL
// selects PostgreSQL; anything else is a SQLite file path.
type DatabaseConfig struct {
	URL            string `json:"url,omitempty" koanf:"url"`
	ConnectRetries int    `json:"connect_retries,omitempty" koanf:"connect_retries" jsonschema:"minimum=0"`
}

// PolicyConfig configures password strength rules.
type PolicyConfig struct {
	MinLength       int           `json:"min_length,omitempty" koanf:"min_length" jsonschema:"minimum=1"`
	RequiredClasses []ClassConfig `json:"required_classes,omitempty" koanf:"required_classes" jsonschema:"minItems=1"`
}

// ClassConfig is one character class a password must contain.
type ClassConfig struct {
	Name    string `json:"name" koanf:"name" jsonschema:"required,minLength=1"`
	Pattern string `json:"pattern" koanf:"pattern" jsonschema:"required,minLength=1"`
}

// SignupConfig restricts who may register. An empty list allows every domain.
type SignupConfig struct {
	AllowedEmailDomains []string `json:"allowed_email_domains,omitempty" koanf:"allowed_email_domains"`
}

// HasherConfig tunes argon2id. Salt and key lengths are fixed.
type HasherConfig struct {
	Time      uint32 `json:"time,omitempty" koanf:"time" jsonschema:"minimum=1"`
	MemoryKiB uint32 `json:"memory_kib,omitempty" koanf:"memory_kib" jsonschema:"minimum=8"`
	Threads   uint8  `json:"threads,omitempty" koanf:"threads" jsonschema:"minimum=1,maximum=255"`
}

// MetricsConfig sets where counters are written. Empty disables the export.
type MetricsConfig struct {
	File string `json:"file,omitempty" koanf:"file"`
}

var (
	validFormats = []string{"json", "text"}
	validLevels  = []string{"debug", "info", "warn", "error"}
)

// Validate checks values that flags can set without passing through the
// JSON Schema.
func (c *Config) Validate() error {
	if !slices.Contains(validFormats, c.Log.Format) {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.Log.Format).
			Errorf("log format must be one of %s", strings.Join(validFormats, ", "))
	}
	if !slices.Contains(validLevels, c.Log.Level) {
		return oops.Code("CONFIG_INVALID").
			With("log_level", c.Log.Level).
			Errorf("log level must be one of %s", strings.Join(validLevels, ", "))
	}
	if c.Database.ConnectRetries < 0 {
		return oops.Code("CONFIG_INVALID").
			With("connect_retries", c.Database.ConnectRetries).
			Errorf("connect_retries must be non-negative")
	}
	return nil
}

// SlogLevel converts the configured level name.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Policy builds the password policy.
func (c PolicyConfig) Policy() (account.PasswordPolicy, error) {
	specs := make([]account.ClassSpec, 0, len(c.RequiredClasses))
	for _, cls := range c.RequiredClasses {
		specs = append(specs, account.ClassSpec{Name: cls.Name, Pattern: cls.Pattern})
	}
	policy, err := account.NewPasswordPolicy(c.MinLength, specs)
	if err != nil {
		return account.PasswordPolicy{}, oops.With("section", "password_policy").Wrap(err)
	}
	return policy, nil
}

// EmailRule builds the signup domain allow-list.
func (c SignupConfig) EmailRule() (*account.EmailRule, error) {
	rule, err := account.NewEmailRule(c.AllowedEmailDomains)
	if err != nil {
		return nil, oops.With("section", "signup").Wrap(err)
	}
	return rule, nil
}

// Params returns argon2id parameters with the default salt and key length.
func (c HasherConfig) Params() identity.Params {
	p := identity.DefaultParams()
	p.Time = c.Time
	p.MemoryKiB = c.MemoryKiB
	p.Threads = c.Threads
	return p
}
