package resolver

import (
	"context"
	"errors"

	tutor_errors "tutor-central/pkg/errors"

	"go.uber.org/zap"
)

type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeBadUserInput    Code = "BAD_USER_INPUT"
	CodeStorage         Code = "STORAGE_ERROR"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeInternal        Code = "INTERNAL"
)

// Error is the protocol level failure returned by every operation.
type Error struct {
	Message string
	Code    Code
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the protocol code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeInternal
}

// translate turns a service failure into an *Error. Storage and unknown
// failures are logged in full and surfaced with a generic message.
func (r *Resolver) translate(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}

	switch {
	case errors.Is(err, tutor_errors.ErrUnauthorized):
		return &Error{Message: err.Error(), Code: CodeUnauthenticated, cause: err}
	case errors.Is(err, tutor_errors.ErrRateLimited):
		return &Error{Message: err.Error(), Code: CodeRateLimited, cause: err}
	case errors.Is(err, tutor_errors.ErrNotFound):
		return &Error{Message: err.Error(), Code: CodeNotFound, cause: err}
	case tutor_errors.IsConflict(err):
		return &Error{Message: err.Error(), Code: CodeConflict, cause: err}
	case errors.Is(err, tutor_errors.ErrInvalidInput), errors.Is(err, tutor_errors.ErrTooLarge):
		return &Error{Message: err.Error(), Code: CodeBadUserInput, cause: err}
	case errors.Is(err, tutor_errors.ErrStorage):
		r.log.WithContext(ctx).Logger.Error("storage failure", zap.String("operation", op), zap.Error(err))
		return &Error{Message: "storage is unavailable, try again later", Code: CodeStorage, cause: err}
	default:
		r.log.WithContext(ctx).Logger.Error("unexpected failure", zap.String("operation", op), zap.Error(err))
		return &Error{Message: "internal error", Code: CodeInternal, cause: err}
	}
}
