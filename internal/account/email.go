// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

import (
	"net/mail"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// ValidEmail reports whether s is a bare address (local@domain, no display
// name or angle brackets) with a dotted domain, "localhost" or an address
// literal.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return false
	}
	domain := s[at+1:]
	switch {
	case domain == "localhost":
		return true
	case strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]"):
		return true
	}
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}

// EmailRule restricts signup to a set of email domains.
//
// Patterns use '.' as the segment separator:
//   - "example.com" - exact domain
//   - "*.example.com" - one subdomain level
//   - "**.example.com" - any depth of subdomain
//   - "*" or "**" - any domain
type EmailRule struct {
	globs []glob.Glob
}

// NewEmailRule compiles domain patterns. An empty list allows every domain.
func NewEmailRule(patterns []string) (*EmailRule, error) {
	rule := &EmailRule{}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p), '.')
		if err != nil {
			return nil, oops.Code("EMAIL_RULE_INVALID").
				With("pattern", p).
				Wrap(err)
		}
		rule.globs = append(rule.globs, g)
	}
	return rule, nil
}

// Allows reports whether the domain of email matches a pattern.
func (r *EmailRule) Allows(email string) bool {
	if r == nil || len(r.globs) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, g := range r.globs {
		if g.Match(domain) {
			return true
		}
	}
	return false
}
