// Package response writes the JSON bodies of the HTTP API.
package response

import (
	"net/http"

	deliverycontext "devconnect/internal/delivery/context"
	domainerrors "devconnect/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// AuthResponse is returned by registration and login.
type AuthResponse struct {
	Message string `json:"message"`
	User    any    `json:"user"`
	Token   string `json:"token"`
}

// UserResponse wraps a single public identity.
type UserResponse struct {
	Message string `json:"message,omitempty"`
	User    any    `json:"user"`
}

// MessageResponse carries only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Auth writes a registration or login result.
func Auth(c echo.Context, statusCode int, message string, user any, token string) error {
	return c.JSON(statusCode, AuthResponse{
		Message: message,
		User:    user,
		Token:   token,
	})
}

// User writes {user} with an optional message.
func User(c echo.Context, statusCode int, message string, user any) error {
	return c.JSON(statusCode, UserResponse{
		Message: message,
		User:    user,
	})
}

// Message writes {message}.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageResponse{Message: message})
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode string, message string) error {
	return c.JSON(statusCode, ErrorResponse{
		Message:   message,
		Code:      errorCode,
		RequestID: deliverycontext.GetRequestIDFromContext(c.Request().Context()),
	})
}

// Unauthorized returns a 401 error
func Unauthorized(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusUnauthorized, errorCode, message)
}

// Forbidden returns a 403 error
func Forbidden(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusForbidden, errorCode, message)
}

// HandleAppError renders a domain error; any other error is returned for the error handler.
func HandleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message())
	}

	return errors.WithStack(err)
}
