package errors

import (
	"net/http"

	"devconnect/internal/errors"
)

// AppError is an error that knows how it is rendered to an HTTP client.
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Machine-readable code, e.g. INVALID_TOKEN
	Message() string   // Text safe to show the client
	Details() string   // Server-side context, logged but never rendered
}

// BaseError is the AppError used for every predefined failure.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

func newError(httpCode int, errorCode, message string) *BaseError {
	return NewBaseError(httpCode, errorCode, message, "")
}

func (e *BaseError) Error() string { return e.message }

func (e *BaseError) HTTPCode() int { return e.httpCode }

func (e *BaseError) ErrorCode() string { return e.errorCode }

func (e *BaseError) Message() string { return e.message }

func (e *BaseError) Details() string { return e.details }

// Is matches on the error code, so a copy made by WithDetails still satisfies
// errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)

	return ok && t.errorCode == e.errorCode
}

// WrapMessage adds server-side context while keeping the client-facing fields.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// WithDetails returns a copy carrying details.
func (e *BaseError) WithDetails(details string) *BaseError {
	cp := *e
	cp.details = details

	return &cp
}

// Identity store. ErrEmailTaken is a conflict but answers 400, as registration
// clients expect.
var (
	ErrIdentityNotFound = newError(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	ErrEmailTaken       = newError(http.StatusBadRequest, "USER_ALREADY_EXISTS", "User already exists with this email")
	ErrEmptyUpdate      = newError(http.StatusBadRequest, "EMPTY_UPDATE", "No updatable fields provided")
)

// Credentials and tokens. Every login failure maps to ErrInvalidCredentials so
// responses never reveal whether an email is registered.
var (
	ErrInvalidCredentials = newError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrNoToken            = newError(http.StatusUnauthorized, "NO_TOKEN", "No token provided")
	ErrInvalidToken       = newError(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
	ErrPasswordHashFailed = newError(http.StatusInternalServerError, "PASSWORD_HASH_FAILED", "Internal server error")
	ErrTokenIssueFailed   = newError(http.StatusInternalServerError, "TOKEN_ISSUE_FAILED", "Internal server error")
)

// Input validation
var (
	ErrMissingFields    = newError(http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields")
	ErrInvalidUserType  = newError(http.StatusBadRequest, "INVALID_USER_TYPE", "Invalid user type")
	ErrPasswordTooShort = newError(http.StatusBadRequest, "PASSWORD_TOO_SHORT", "Password must be at least 6 characters long")
	ErrPasswordTooLong  = newError(http.StatusBadRequest, "PASSWORD_TOO_LONG", "Password must be at most 72 bytes long")
	ErrValidationFailed = newError(http.StatusBadRequest, "VALIDATION_FAILED", "Invalid input")
)

// General
var (
	ErrTooManyRequests = newError(http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests")
	ErrInternalError   = newError(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	ErrForbidden       = newError(http.StatusForbidden, "FORBIDDEN", "Forbidden")
	ErrNotFound        = newError(http.StatusNotFound, "NOT_FOUND", "Not found")
)

// DatabaseExecuteError hides a store failure behind a generic 500 while
// keeping the cause reachable through errors.Is and errors.As.
type DatabaseExecuteError struct {
	err error
	op  string
}

// NewDatabaseExecuteError wraps a store failure; op names the failed operation.
func NewDatabaseExecuteError(err error, op string) AppError {
	return &DatabaseExecuteError{err: err, op: op}
}

func (e *DatabaseExecuteError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *DatabaseExecuteError) Unwrap() error { return e.err }

func (e *DatabaseExecuteError) HTTPCode() int { return http.StatusInternalServerError }

func (e *DatabaseExecuteError) ErrorCode() string { return "DATABASE_EXECUTE_FAILED" }

func (e *DatabaseExecuteError) Message() string { return "Internal server error" }

func (e *DatabaseExecuteError) Details() string { return e.op }
