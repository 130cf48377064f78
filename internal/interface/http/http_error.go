package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/label-insight/internal/domain/analysis"
	"github.com/yanqian/label-insight/internal/domain/auth"
	apperrors "github.com/yanqian/label-insight/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps a service error to its status. The message is the
// full error text so causes like "OCR Error: ..." reach the client.
func fromDomainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = "internal_error"
	}
	return NewHTTPError(statusForCode(code), code, err.Error(), err)
}

func statusForCode(code string) int {
	switch code {
	case analysis.CodeInvalidInput:
		return http.StatusBadRequest
	case auth.CodeEmailExists:
		return http.StatusConflict
	case auth.CodeInvalidCredentials, auth.CodeInvalidToken:
		return http.StatusUnauthorized
	case auth.CodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
