package query

import "fmt"

// ErrorCode identifies the validation failure class. Every code maps to
// HTTP 400 in the handler; storage failures are not ValidationErrors.
type ErrorCode string

const (
	ErrInvalidJoinPath           ErrorCode = "invalid_join_path"
	ErrJoinDepthExceeded         ErrorCode = "join_depth_exceeded"
	ErrJoinNotWhitelisted        ErrorCode = "join_not_whitelisted"
	ErrUnknownEntityInProjection ErrorCode = "unknown_entity_in_projection"
	ErrInvalidField              ErrorCode = "invalid_field"
	ErrInvalidFilterValue        ErrorCode = "invalid_filter_value"
	ErrInvalidOrderingPath       ErrorCode = "invalid_ordering_path"
)

// ValidationError carries a machine code and a human-readable message naming
// the rejected parameter and value. Detected eagerly, before any SQL runs.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(code ErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}
