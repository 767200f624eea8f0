// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

import "strings"

// Messages for form-level rules. Password policy messages live with the policy.
const (
	msgRequired         = "this field is required"
	msgInvalidEmail     = "invalid email address format"
	msgEmailDomain      = "email domain is not allowed"
	msgPasswordMismatch = "passwords do not match"
)

// SignupForm checks a signup submission. It moves from unchecked to
// checked on the first call to Check, Valid or Errors; later calls return
// the cached result.
type SignupForm struct {
	input     Credentials
	policy    PasswordPolicy
	emailRule *EmailRule

	checked bool
	errs    ValidationErrors
	cleaned Credentials
}

// NewSignupForm creates an unchecked form. emailRule may be nil.
func NewSignupForm(input Credentials, policy PasswordPolicy, emailRule *EmailRule) *SignupForm {
	return &SignupForm{
		input:     input,
		policy:    policy,
		emailRule: emailRule,
	}
}

// Check runs every rule once. Every field is checked even when an earlier
// field failed.
func (f *SignupForm) Check() ValidationErrors {
	if f.checked {
		return f.errs
	}
	f.checked = true

	email, emailOK := f.checkEmail(strings.TrimSpace(f.input.Email))
	password, passwordOK := f.checkPassword(FieldPassword, f.input.Password)
	confirm, confirmOK := f.checkPassword(FieldPasswordConfirm, f.input.PasswordConfirm)

	// Only compared once both sides passed their own rules.
	if passwordOK && confirmOK && password != confirm {
		f.errs.add(NonFieldErrors, FieldError{Code: CodePasswordMismatch, Message: msgPasswordMismatch})
	}

	if emailOK && passwordOK && confirmOK {
		f.cleaned = Credentials{Email: email, Password: password, PasswordConfirm: confirm}
	}
	return f.errs
}

// Valid reports whether every rule passed.
func (f *SignupForm) Valid() bool {
	return f.Check().Valid()
}

// Errors returns the recorded errors.
func (f *SignupForm) Errors() ValidationErrors {
	return f.Check()
}

// Cleaned returns the accepted values, with the email trimmed. It is the
// zero value unless the form is valid.
func (f *SignupForm) Cleaned() Credentials {
	if !f.Valid() {
		return Credentials{}
	}
	return f.cleaned
}

func (f *SignupForm) checkEmail(email string) (string, bool) {
	if email == "" {
		f.errs.add(FieldEmail, FieldError{Code: CodeRequired, Message: msgRequired})
		return "", false
	}
	if !ValidEmail(email) {
		f.errs.add(FieldEmail, FieldError{Code: CodeInvalid, Message: msgInvalidEmail})
		return "", false
	}
	if !f.emailRule.Allows(email) {
		f.errs.add(FieldEmail, FieldError{Code: CodeDomain, Message: msgEmailDomain})
		return "", false
	}
	return email, true
}

func (f *SignupForm) checkPassword(field, password string) (string, bool) {
	if password == "" {
		f.errs.add(field, FieldError{Code: CodeRequired, Message: msgRequired})
		return "", false
	}
	failures := f.policy.Validate(password)
	for _, fe := range failures {
		f.errs.add(field, fe)
	}
	return password, len(failures) == 0
}
