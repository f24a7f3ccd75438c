package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeUnprocessable   Code = "UNPROCESSABLE"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func Invalid(msg string) *APIError         { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func NotFound(msg string) *APIError        { return &APIError{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *APIError        { return &APIError{Code: CodeConflict, Message: msg} }
func Unauthenticated(msg string) *APIError { return &APIError{Code: CodeUnauthenticated, Message: msg} }
func Forbidden(msg string) *APIError       { return &APIError{Code: CodeForbidden, Message: msg} }
func Unprocessable(msg string) *APIError   { return &APIError{Code: CodeUnprocessable, Message: msg} }
func Internal(msg string) *APIError        { return &APIError{Code: CodeInternal, Message: msg} }

// Is reports whether err carries an APIError with the given code.
func Is(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeUnprocessable:
			return http.StatusUnprocessableEntity
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

type ErrorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func Body(code Code, msg string) ErrorDTO {
	var e ErrorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// FromErr builds the response body for err. Errors that are not APIErrors are
// reported as INTERNAL without leaking their text.
func FromErr(err error) ErrorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return Body(api.Code, api.Message)
	}
	return Body(CodeInternal, "internal error")
}

// Respond writes err as the JSON error envelope.
func Respond(c *gin.Context, err error) {
	c.JSON(ToHTTPStatus(err), FromErr(err))
}

// Abort is Respond for middleware.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(ToHTTPStatus(err), FromErr(err))
}
