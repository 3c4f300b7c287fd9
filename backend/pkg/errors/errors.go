package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing entity
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeValidation represents a rejected input or violated business rule
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConflict represents state that changed underneath a multi-step operation
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind reports the error category. Typed errors embedding *BaseError inherit it.
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// Summary returns the message without the type prefix or wrapped cause
func (e *BaseError) Summary() string {
	return e.Message
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Entity Errors

// ErrNotFound is returned when a referenced entity does not exist
type ErrNotFound struct {
	*BaseError
	Entity string
	ID     string
}

func NewNotFound(entity, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", entity, id), nil),
		Entity:    entity,
		ID:        id,
	}
}

// ErrValidationFailed is returned when input violates a business rule
type ErrValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidationFailed(field, reason string) *ErrValidationFailed {
	return &ErrValidationFailed{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("%s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConflict is returned when an entity vanished or changed between the steps
// of a multi-collection operation
type ErrConflict struct {
	*BaseError
	Operation string
}

func NewConflict(operation, reason string, err error) *ErrConflict {
	return &ErrConflict{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("%s: %s", operation, reason), err),
		Operation: operation,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a Neo4j query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, "graph query failed", err),
		Query:     query,
	}
}

// Context Errors

// ErrContextCancelled is returned when a context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type kinded interface {
	Kind() ErrorType
}

// KindOf returns the category of the first typed error in err's chain, or ""
func KindOf(err error) ErrorType {
	var k kinded
	if stderrors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// MessageOf returns the client-safe message of a typed error, or err.Error()
func MessageOf(err error) string {
	var s interface{ Summary() string }
	if stderrors.As(err, &s) {
		return s.Summary()
	}
	return err.Error()
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return err != nil && KindOf(err) == errType
}

// IsNotFound reports whether err is an ErrorTypeNotFound error
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

// IsValidation reports whether err is an ErrorTypeValidation error
func IsValidation(err error) bool {
	return IsErrorType(err, ErrorTypeValidation)
}

// IsConflict reports whether err is an ErrorTypeConflict error
func IsConflict(err error) bool {
	return IsErrorType(err, ErrorTypeConflict)
}
