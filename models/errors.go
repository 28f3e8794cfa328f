package models

import (
	"errors"
	"fmt"
)

// Code classifies an Error for HTTP status mapping and logging
type Code string

// Error codes
const (
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeNotFound     Code = "NOT_FOUND"
	CodeExists       Code = "EXISTS"
	CodeStorageRead  Code = "STORAGE_READ"
	CodeStorageWrite Code = "STORAGE_WRITE"
	CodeInternal     Code = "INTERNAL"
)

// Error is a tagged domain error. Metric is set for storage and not-found
// errors so logs can disambiguate among the metric tables.
type Error struct {
	Code    Code
	Metric  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// NewBadRequest creates a validation error for a missing or empty field
func NewBadRequest(field string) *Error {
	return &Error{
		Code:    CodeBadRequest,
		Message: fmt.Sprintf("missing or empty parameter: %s", field),
	}
}

// NewNotFound creates an error for a sensor with no readings in a metric
func NewNotFound(metric, sensorID string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Metric:  metric,
		Message: fmt.Sprintf("no reading for sensor %s in %s", sensorID, metric),
	}
}

// NewStorageRead wraps an underlying read fault with the metric name
func NewStorageRead(metric string, err error) *Error {
	return &Error{
		Code:    CodeStorageRead,
		Metric:  metric,
		Message: fmt.Sprintf("%s: storage read failed", metric),
		Err:     err,
	}
}

// NewStorageWrite wraps an underlying write fault with the metric name
func NewStorageWrite(metric string, err error) *Error {
	return &Error{
		Code:    CodeStorageWrite,
		Metric:  metric,
		Message: fmt.Sprintf("%s: storage write failed", metric),
		Err:     err,
	}
}

// NewInternal wraps an unexpected fault
func NewInternal(err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// AsError extracts a tagged *Error from an error chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
