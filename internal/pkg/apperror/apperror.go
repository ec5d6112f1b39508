package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies application errors for HTTP mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindContentBlocked
	KindSessionBlocked
	KindForbidden
	KindUnauthorized
	KindConflict
	KindServiceUnavailable
	KindUpstream
)

// AppError carries a kind and a client-safe message.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation, KindContentBlocked:
		return fiber.StatusBadRequest
	case KindSessionBlocked:
		return fiber.StatusLocked
	case KindForbidden:
		return fiber.StatusForbidden
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindConflict:
		return fiber.StatusConflict
	case KindServiceUnavailable:
		return fiber.StatusServiceUnavailable
	case KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func Validation(message string) *AppError {
	return New(KindValidation, message)
}

func ContentBlocked(message string) *AppError {
	return New(KindContentBlocked, message)
}

func SessionBlocked(message string) *AppError {
	return New(KindSessionBlocked, message)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message)
}

func Upstream(message string, err error) *AppError {
	return Wrap(KindUpstream, message, err)
}

// As extracts an *AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
