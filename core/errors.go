package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError rejects user input before anything is persisted.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// AuthError is a recoverable identity or code mismatch: the user may retry.
type AuthError struct {
	Err error
}

func NewAuthError(err error) error {
	return &AuthError{err}
}

func (err AuthError) Error() string { return err.Err.Error() }
func (err AuthError) Unwrap() error { return err.Err }

// RosterLoadError is returned when the student roster is missing or malformed.
type RosterLoadError struct {
	Path string
	Err  error
}

func NewRosterLoadError(path string, err error) error {
	return &RosterLoadError{Path: path, Err: err}
}

func (err RosterLoadError) Error() string {
	return "loading roster " + err.Path + ": " + err.Err.Error()
}

func (err RosterLoadError) Unwrap() error { return err.Err }

// StoreConnectError is returned when the submission store cannot be reached.
// Contrary to an unreadable store (treated as empty), it always fails the operation.
type StoreConnectError struct {
	Err error
}

func NewStoreConnectError(err error) error {
	return &StoreConnectError{err}
}

func (err StoreConnectError) Error() string { return "store unreachable: " + err.Err.Error() }
func (err StoreConnectError) Unwrap() error { return err.Err }

func IsStoreConnect(err error) bool {
	var sce *StoreConnectError
	return errors.As(err, &sce)
}
