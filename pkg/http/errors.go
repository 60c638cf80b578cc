package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in the envelope's data list.
const (
	CodeBadRequest    = "ERR_BAD_REQUEST"
	CodeEmptyUniverse = "ERR_EMPTY_UNIVERSE"
	CodeInternal      = "ERR_INTERNAL"
	CodeUnsizable     = "ERR_UNSIZABLE_POSITION"
	CodeUpstream      = "ERR_UPSTREAM"
)

// AppError is a domain failure mapped to an HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

// WithParam attaches one detail to the error.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{}, 1)
	}
	e.Params[key] = value
	return e
}

// WithError records the cause. It is never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, "", message, http.StatusBadRequest)
}

// EmptyUniverseError is returned when a recommendation has no contract to work with.
func EmptyUniverseError(message string) *AppError {
	return NewAppError(CodeEmptyUniverse, "chain_snapshot.candidates", message, http.StatusUnprocessableEntity)
}

// UnsizablePositionError is returned when sizing would overflow.
func UnsizablePositionError(message string) *AppError {
	return NewAppError(CodeUnsizable, "request.capital_usd", message, http.StatusUnprocessableEntity)
}

// UpstreamError is returned when a downstream service fails. A 4xx from the
// service becomes 422, anything else 502.
func UpstreamError(service string, err error) *AppError {
	status, msg := http.StatusBadGateway, service+" unavailable"
	var se *StatusError
	if errors.As(err, &se) && se.Code >= http.StatusBadRequest && se.Code < http.StatusInternalServerError {
		status, msg = http.StatusUnprocessableEntity, service+" rejected the request"
	}
	return NewAppError(CodeUpstream, "", msg, status).WithParam("service", service).WithError(err)
}
