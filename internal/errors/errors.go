package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/amalgam/internal/logger"
)

// Code identifies an error kind across the service
type Code string

const (
	// Persistence taxonomy
	CodeUnresolvableIdentifier Code = "UNRESOLVABLE_IDENTIFIER"
	CodeCorruptDocument        Code = "CORRUPT_DOCUMENT"
	CodeUnknownField           Code = "UNKNOWN_FIELD"

	// API surface
	CodeUnknownGroup Code = "UNKNOWN_GROUP"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrUnresolvableIdentifier = &AmalgamError{Code: CodeUnresolvableIdentifier}
	ErrCorruptDocument        = &AmalgamError{Code: CodeCorruptDocument}
	ErrUnknownField           = &AmalgamError{Code: CodeUnknownField}
	ErrUnknownGroup           = &AmalgamError{Code: CodeUnknownGroup}
	ErrNotFound               = &AmalgamError{Code: CodeNotFound}
)

// AmalgamError represents a structured error with HTTP context
type AmalgamError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AmalgamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AmalgamError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AmalgamError carrying the same code.
func (e *AmalgamError) Is(target error) bool {
	t, ok := target.(*AmalgamError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context information to the error
func (e *AmalgamError) WithContext(key string, value interface{}) *AmalgamError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ToGinResponse sends the error as a standardized JSON response
func (e *AmalgamError) ToGinResponse(c *gin.Context) {
	statusCode := e.HTTPStatus
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	response := gin.H{
		"error": e.Error(),
		"code":  e.Code,
	}

	if len(e.Context) > 0 {
		response["details"] = e.Context
	}

	args := []interface{}{
		"status", statusCode,
		"code", e.Code,
		"message", e.Message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP error response", args...)
	} else {
		logger.Warn("HTTP error response", args...)
	}

	c.AbortWithStatusJSON(statusCode, response)
}

// As extracts the first AmalgamError in err's chain
func As(err error) (*AmalgamError, bool) {
	var ae *AmalgamError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Respond renders any error, falling back to INTERNAL_ERROR for plain errors
func Respond(c *gin.Context, err error) {
	if ae, ok := As(err); ok {
		ae.ToGinResponse(c)
		return
	}
	NewInternalError("request failed", err).ToGinResponse(c)
}

// NewUnresolvableIdentifier reports a source type id with no usable factory
func NewUnresolvableIdentifier(typeID string, cause error) *AmalgamError {
	return &AmalgamError{
		Code:       CodeUnresolvableIdentifier,
		Message:    fmt.Sprintf("cannot create source for %q", typeID),
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"className": typeID},
		Cause:      cause,
	}
}

// NewCorruptDocument reports a settings document that cannot be loaded
func NewCorruptDocument(message string, cause error) *AmalgamError {
	return &AmalgamError{
		Code:       CodeCorruptDocument,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewUnknownField reports a field name that is not part of a group's schema
func NewUnknownField(group, field string) *AmalgamError {
	return &AmalgamError{
		Code:       CodeUnknownField,
		Message:    fmt.Sprintf("field %q is not known to group %s", field, group),
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"group": group, "field": field},
	}
}

// NewUnknownGroup reports a group identifier outside the closed set
func NewUnknownGroup(group string) *AmalgamError {
	return &AmalgamError{
		Code:       CodeUnknownGroup,
		Message:    fmt.Sprintf("unknown scraper group %q", group),
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"group": group},
	}
}

func NewValidationError(message string, field string) *AmalgamError {
	return &AmalgamError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"field": field},
	}
}

func NewNotFoundError(resource string, id string) *AmalgamError {
	return &AmalgamError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
		Context:    map[string]interface{}{"resource": resource, "id": id},
	}
}

func NewInternalError(message string, cause error) *AmalgamError {
	return &AmalgamError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}
