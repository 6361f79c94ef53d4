// Package apierror defines Snowflake-compatible error codes and the JSON
// error envelope used by the REST handlers.
package apierror

import (
	"errors"
	"fmt"
)

// Snowflake-compatible error codes.
const (
	// Authentication errors (390xxx)
	CodeAuthenticationFailed = "390100"

	// SQL execution errors (001xxx)
	CodeSQLExecutionError = "001007"

	// Object errors (002xxx)
	CodeObjectNotFound = "002003"

	// System errors (000xxx)
	CodeInternalError    = "000001"
	CodeInvalidParameter = "000002"
)

// SQLState represents SQL standard error states.
const (
	SQLStateAuthenticationFailed = "28000"
	SQLStateSyntaxError          = "42000"
	SQLStateDataException        = "22000"
	SQLStateNoData               = "02000"
	SQLStateGeneralError         = "HY000"
)

// GetSQLState returns the SQL state for a given error code.
func GetSQLState(code string) string {
	switch code {
	case CodeAuthenticationFailed:
		return SQLStateAuthenticationFailed
	case CodeSQLExecutionError:
		return SQLStateDataException
	case CodeObjectNotFound:
		return SQLStateNoData
	default:
		return SQLStateGeneralError
	}
}

// SnowflakeError represents a Snowflake-compatible error.
type SnowflakeError struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	SQLState string         `json:"sqlState,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *SnowflakeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is checks if this error matches another error by code.
func (e *SnowflakeError) Is(target error) bool {
	var sfErr *SnowflakeError
	if errors.As(target, &sfErr) {
		return e.Code == sfErr.Code
	}
	return false
}

// ErrorResponse is the JSON response structure for errors, shared by all
// handlers.
type ErrorResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Code     string         `json:"code"`
	SQLState string         `json:"sqlState,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// ToResponse converts the SnowflakeError to an ErrorResponse.
func (e *SnowflakeError) ToResponse() *ErrorResponse {
	return &ErrorResponse{
		Success:  false,
		Message:  e.Message,
		Code:     e.Code,
		SQLState: e.SQLState,
		Data:     e.Data,
	}
}

// New creates a SnowflakeError with the given code and message.
func New(code, message string) *SnowflakeError {
	return &SnowflakeError{
		Code:     code,
		Message:  message,
		SQLState: GetSQLState(code),
	}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *SnowflakeError {
	return New(CodeAuthenticationFailed, message)
}

// NewInvalidParameterError creates an invalid parameter error.
func NewInvalidParameterError(paramName, reason string) *SnowflakeError {
	err := New(CodeInvalidParameter, fmt.Sprintf("Invalid parameter '%s': %s", paramName, reason))
	err.Data = map[string]any{"paramName": paramName}
	return err
}

// NewSQLExecutionError creates a SQL execution error.
func NewSQLExecutionError(message string) *SnowflakeError {
	return New(CodeSQLExecutionError, message)
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *SnowflakeError {
	return New(CodeInternalError, message)
}

// FromError converts a standard error to a SnowflakeError. A nil error
// yields nil; an existing SnowflakeError passes through.
func FromError(err error) *SnowflakeError {
	if err == nil {
		return nil
	}
	var sfErr *SnowflakeError
	if errors.As(err, &sfErr) {
		return sfErr
	}
	return New(CodeInternalError, err.Error())
}
