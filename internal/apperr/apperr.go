// Package apperr defines the error kinds surfaced by the directory services.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrStaleWrite   = errors.New("stale write")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
)

func IsErrValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsErrConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsErrStaleWrite(err error) bool   { return errors.Is(err, ErrStaleWrite) }
func IsErrNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsErrBadRequest(err error) bool   { return errors.Is(err, ErrBadRequest) }
func IsErrUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// ValidationError lists the fields that failed their constraints.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError for the given fields, sorted and deduplicated.
func Invalid(fields ...string) error {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return &ValidationError{Fields: out}
}

// Fields returns the violated fields carried by err, if any.
func Fields(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// CommitError reports a failed atomic batch commit.
type CommitError struct {
	Detail    string
	Retryable bool
	cause     error
}

func (e *CommitError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("%s: %s", ErrStaleWrite, e.Detail)
	}
	return fmt.Sprintf("%s: %s", ErrConflict, e.Detail)
}

func (e *CommitError) Unwrap() []error {
	errs := []error{ErrConflict}
	if e.Retryable {
		errs = append(errs, ErrStaleWrite)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Conflict wraps a store commit failure.
func Conflict(cause error) error {
	return pkgerrors.WithStack(&CommitError{Detail: cause.Error(), cause: cause})
}

// StaleWrite wraps a commit that failed because a precondition no longer held.
// The caller may retry the whole operation.
func StaleWrite(cause error) error {
	return pkgerrors.WithStack(&CommitError{Detail: cause.Error(), Retryable: true, cause: cause})
}

// Retryable reports whether err is a commit failure the caller can retry as-is.
func Retryable(err error) bool {
	var ce *CommitError
	return errors.As(err, &ce) && ce.Retryable
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}
