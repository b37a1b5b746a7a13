package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var codeToHTTPStatus = map[string]int{
	ErrInternal:          http.StatusInternalServerError,
	ErrNotFound:          http.StatusNotFound,
	ErrInvalidArgument:   http.StatusBadRequest,
	ErrUnauthenticated:   http.StatusUnauthorized,
	ErrUnauthorized:      http.StatusForbidden,
	ErrConflict:          http.StatusConflict,
	ErrTimeout:           http.StatusGatewayTimeout,
	ErrNotImplemented:    http.StatusNotImplemented,
	ErrInsufficientFunds: http.StatusUnprocessableEntity,
	ErrConfiguration:     http.StatusInternalServerError,
	ErrUpstream:          http.StatusBadGateway,
}

// ToHTTPStatus converts an error code to an HTTP status code.
func ToHTTPStatus(code string) int {
	if status, ok := codeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ToHTTPError converts an error to an Echo HTTP error.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return echo.NewHTTPError(ToHTTPStatus(appErr.Code()), appErr.Error())
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// Respond writes a structured error response for err on the given context.
// Unexpected errors are reported as a generic 500 without leaking internals.
func Respond(c echo.Context, err error) error {
	var appErr *AppError
	if As(err, &appErr) {
		return c.JSON(ToHTTPStatus(appErr.Code()), echo.Map{
			"error": appErr.Error(),
			"code":  appErr.Code(),
		})
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		return c.JSON(echoErr.Code, echo.Map{"error": echoErr.Message, "code": ErrInternal})
	}

	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "internal server error",
		"code":  ErrInternal,
	})
}
