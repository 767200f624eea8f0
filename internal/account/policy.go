// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
)

// DefaultMinPasswordLength is the minimum password length used when no
// policy is configured.
const DefaultMinPasswordLength = 8

// Validation error codes.
const (
	CodeRequired         = "required"
	CodeInvalid          = "invalid"
	CodeDomain           = "domain"
	CodeMinLength        = "min_length"
	CodeVariety          = "variety"
	CodePasswordMismatch = "password_mismatch"
)

// CharacterClass is a named pattern a password must match at least once.
type CharacterClass struct {
	Name    string
	Pattern *regexp.Regexp
}

// ClassSpec is the uncompiled form of a CharacterClass, as it appears in
// configuration.
type ClassSpec struct {
	Name    string
	Pattern string
}

// PasswordPolicy holds the password rules checked on signup.
type PasswordPolicy struct {
	MinLength int
	Classes   []CharacterClass
}

// DefaultPasswordPolicy requires eight characters with at least one ASCII
// letter and one digit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength: DefaultMinPasswordLength,
		Classes: []CharacterClass{
			{Name: "letter", Pattern: regexp.MustCompile(`[a-zA-Z]`)},
			{Name: "digit", Pattern: regexp.MustCompile(`[0-9]`)},
		},
	}
}

// NewPasswordPolicy compiles a policy from configuration values.
func NewPasswordPolicy(minLength int, classes []ClassSpec) (PasswordPolicy, error) {
	if minLength < 1 {
		return PasswordPolicy{}, oops.Code("POLICY_INVALID").
			With("min_length", minLength).
			Errorf("minimum password length must be positive")
	}
	if len(classes) == 0 {
		return PasswordPolicy{}, oops.Code("POLICY_INVALID").
			Errorf("at least one required character class must be configured")
	}

	compiled := make([]CharacterClass, 0, len(classes))
	for _, c := range classes {
		if c.Name == "" {
			return PasswordPolicy{}, oops.Code("POLICY_INVALID").
				With("pattern", c.Pattern).
				Errorf("character class name cannot be empty")
		}
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return PasswordPolicy{}, oops.Code("POLICY_INVALID").
				With("class", c.Name).
				With("pattern", c.Pattern).
				Wrap(err)
		}
		compiled = append(compiled, CharacterClass{Name: c.Name, Pattern: re})
	}

	return PasswordPolicy{MinLength: minLength, Classes: compiled}, nil
}

// ValidateLength reports a min_length error when the password is shorter
// than MinLength characters. Length is counted in runes.
func (p PasswordPolicy) ValidateLength(password string) *FieldError {
	if utf8.RuneCountInString(password) >= p.MinLength {
		return nil
	}
	return &FieldError{
		Code:    CodeMinLength,
		Message: fmt.Sprintf("password must be at least %d characters", p.MinLength),
	}
}

// ValidateVariety reports a variety error unless every character class
// matches somewhere in the password.
func (p PasswordPolicy) ValidateVariety(password string) *FieldError {
	for _, c := range p.Classes {
		if !c.Pattern.MatchString(password) {
			return &FieldError{
				Code:    CodeVariety,
				Message: p.varietyMessage(),
			}
		}
	}
	return nil
}

// Validate runs both checks and returns every failure.
func (p PasswordPolicy) Validate(password string) []FieldError {
	var errs []FieldError
	if fe := p.ValidateLength(password); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := p.ValidateVariety(password); fe != nil {
		errs = append(errs, *fe)
	}
	return errs
}

func (p PasswordPolicy) varietyMessage() string {
	names := make([]string, len(p.Classes))
	for i, c := range p.Classes {
		names[i] = "one " + c.Name
	}
	var list string
	switch len(names) {
	case 1:
		list = names[0]
	default:
		list = strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
	return "password must contain at least " + list
}
