package service

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range input. Nothing has been written.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// NotFoundError reports a missing thread or support case.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// AuthorizationError reports a caller who is not a participant, or a mutation of a locked thread.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// ApplicationError wraps an unexpected persistence or infrastructure failure.
type ApplicationError struct {
	Op  string
	Err error
}

func (e *ApplicationError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

func IsApplication(err error) bool {
	var target *ApplicationError
	return errors.As(err, &target)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// wrapErr passes domain errors through and wraps anything else as an ApplicationError.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsAuthorization(err) || IsApplication(err) {
		return err
	}
	return &ApplicationError{Op: op, Err: err}
}
