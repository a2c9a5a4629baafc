package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes exposed in API envelopes.
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
)

const (
	pgUniqueViolation     = "23505"
	pgInvalidTextEncoding = "22P02"
	pgCheckViolation      = "23514"
)

// DomainError standardizes application errors.
//
// Operational errors are expected failures whose message is safe to show the caller.
// Anything else is a programming or infrastructure failure and is masked in production.
type DomainError struct {
	Code        string
	Message     string
	HTTPStatus  int
	Details     map[string]any
	Err         error
	Operational bool
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs an operational DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details, Operational: true}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(message string) error {
	return NewDomainError(CodeNotFound, message, http.StatusNotFound, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewOperationalInternal reports a 500 whose message is still safe to show, such as a
// failed mail delivery.
func NewOperationalInternal(message string, err error) error {
	return &DomainError{
		Code:        CodeInternal,
		Message:     message,
		HTTPStatus:  http.StatusInternalServerError,
		Err:         err,
		Operational: true,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromStatus(fiberErr.Code, fiberErr.Message)
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return NewDomainError(CodeNotFound, "No document found with that ID.", http.StatusNotFound, nil)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return NewDomainError(CodeConflict, "Duplicate field value. Use another value.", http.StatusConflict,
				map[string]any{"constraint": pgErr.ConstraintName})
		case pgInvalidTextEncoding:
			return NewDomainError(CodeValidationFailed, "Invalid ID.", http.StatusBadRequest, nil)
		case pgCheckViolation:
			return NewDomainError(CodeValidationFailed, "Invalid input data.", http.StatusBadRequest,
				map[string]any{"constraint": pgErr.ConstraintName})
		}
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return NewDomainError(CodeUnauthenticated, "Your token has expired. Please log in again.", http.StatusUnauthorized, nil)
	}
	if errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) || errors.Is(err, jwt.ErrTokenInvalidClaims) {
		return NewDomainError(CodeUnauthenticated, "Invalid token. Please log in again.", http.StatusUnauthorized, nil)
	}

	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromStatus(status int, message string) *DomainError {
	code := CodeInternal
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		code = CodeValidationFailed
	case http.StatusUnauthorized:
		code = CodeUnauthenticated
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		code = CodeNotFound
	case http.StatusConflict:
		code = CodeConflict
	case http.StatusTooManyRequests:
		code = "TOO_MANY_REQUESTS"
	}
	return &DomainError{
		Code:        code,
		Message:     message,
		HTTPStatus:  status,
		Operational: status < http.StatusInternalServerError,
	}
}

// IsCode reports whether err maps to a DomainError with the given code.
func IsCode(err error, code string) bool {
	de := ToDomainError(err)
	return de != nil && de.Code == code
}
