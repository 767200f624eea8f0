// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

package account

// NonFieldErrors is the key under which cross-field errors are recorded.
const NonFieldErrors = "__all__"

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationErrors collects FieldErrors in the order the rules ran.
// Field order is fixed: email, password, password_confirm, then
// NonFieldErrors.
type ValidationErrors struct {
	errs []FieldError
}

func (v *ValidationErrors) add(field string, fe FieldError) {
	fe.Field = field
	v.errs = append(v.errs, fe)
}

// Valid reports whether no rule failed.
func (v ValidationErrors) Valid() bool {
	return len(v.errs) == 0
}

// All returns a copy of every recorded error.
func (v ValidationErrors) All() []FieldError {
	out := make([]FieldError, len(v.errs))
	copy(out, v.errs)
	return out
}

// Fields returns the names of the fields with errors, in check order.
func (v ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, fe := range v.errs {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			fields = append(fields, fe.Field)
		}
	}
	return fields
}

// Messages returns the messages recorded for field.
func (v ValidationErrors) Messages(field string) []string {
	var msgs []string
	for _, fe := range v.errs {
		if fe.Field == field {
			msgs = append(msgs, fe.Message)
		}
	}
	return msgs
}

// Has reports whether field failed with code.
func (v ValidationErrors) Has(field, code string) bool {
	for _, fe := range v.errs {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// First returns the first recorded error. ok is false when there are none.
func (v ValidationErrors) First() (fe FieldError, ok bool) {
	if len(v.errs) == 0 {
		return FieldError{}, false
	}
	return v.errs[0], true
}

// ValidationError is the error returned for a rejected signup form.
// Error() yields only the first message; the full set stays in Errors.
type ValidationError struct {
	Errors ValidationErrors
}

func (e *ValidationError) Error() string {
	fe, ok := e.Errors.First()
	if !ok {
		return "validation failed"
	}
	return fe.Message
}
