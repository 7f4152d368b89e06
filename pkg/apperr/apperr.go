// Package apperr defines the typed error taxonomy shared by the service
// layer and the HTTP handlers. Every terminal failure surfaced to a caller
// carries one of the codes from codes.go; transport layers translate the
// code, never the message, into their own status space.
package apperr

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func InvalidArg(msg string) error { return New(CodeInvalidArgument, msg) }

func NotFound(msg string) error { return New(CodeNotFound, msg) }

func Unauthenticated(msg string) error { return New(CodeUnauthenticated, msg) }

func Unauthorized(msg string) error { return New(CodeUnauthorized, msg) }

func AlreadyInActiveSession(msg string) error { return New(CodeAlreadyInActiveSession, msg) }

func InvalidPhase(msg string) error { return New(CodeInvalidPhase, msg) }

func RateLimited(msg string) error { return New(CodeRateLimited, msg) }

func RequestPending(msg string) error { return New(CodeRequestPending, msg) }

func Internal(msg string, cause error) error { return Wrap(CodeInternal, msg, cause) }

// CodeOf extracts the application code from any error in the chain,
// falling back to CodeUnknown for plain errors.
func CodeOf(err error) Code {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
