// Package dberror defines the structured error type shared by every layer of heapdb.
//
// Errors are classified by [ErrorCategory] so callers can decide between surfacing an
// error, rolling a transaction back, or treating it as a programming fault:
//
//   - [ErrCategoryStorage]: malformed page bytes, page out of range, I/O failure.
//     Fatal to the single operation.
//   - [ErrCategoryConcurrency]: a transaction chosen as a deadlock victim. The caller
//     must abort the transaction.
//   - [ErrCategoryConstraint]: page full, slot occupied, tuple not on page.
//   - [ErrCategoryProtocol]: iterator used out of lifecycle order, schema mismatch.
//   - [ErrCategoryUser]: unknown tables and bad user input.
package dberror

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by invalid user input, such as an unknown table name.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategoryStorage represents failures reading, writing or decoding pages.
	ErrCategoryStorage

	// ErrCategoryConcurrency represents errors from concurrent transaction conflicts.
	// The enclosing transaction must be aborted.
	ErrCategoryConcurrency

	// ErrCategoryConstraint represents violated page-level constraints during mutation.
	ErrCategoryConstraint

	// ErrCategoryProtocol represents contract violations by the caller.
	ErrCategoryProtocol
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategoryStorage:
		return "storage"
	case ErrCategoryConcurrency:
		return "concurrency"
	case ErrCategoryConstraint:
		return "constraint"
	case ErrCategoryProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// DBError represents a structured database error with rich context information.
type DBError struct {
	// Code is a unique identifier for this error type (e.g., "TRANSACTION_ABORTED", "PAGE_FULL").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	Detail string

	// Operation identifies the operation that was being performed when the error occurred.
	// Examples: "InsertTuple", "GetPage", "LockPage".
	Operation string

	// Component identifies the system component where the error originated.
	// Examples: "BufferPool", "LockManager", "HeapPage".
	Component string

	// Cause is the underlying error that triggered this database error.
	Cause error

	// stack carries the call stack where this error was created.
	stack error
}

// New creates a new DBError with the specified category, code and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		stack:    pkgerrors.New(code),
	}
}

// Newf is New with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...any) *DBError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with database-specific context information.
// If the error is already a DBError, it enriches the existing error with
// operation and component context (only if not already set).
func Wrap(err error, category ErrorCategory, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  category,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		stack:     pkgerrors.WithStack(err),
	}
}

// WithDetail sets Detail and returns the receiver for chaining.
func (e *DBError) WithDetail(format string, args ...any) *DBError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// At sets the operation and component and returns the receiver for chaining.
func (e *DBError) At(operation, component string) *DBError {
	e.Operation = operation
	e.Component = component
	return e
}

// Error implements the standard Go error interface
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil && e.Cause.Error() != e.Message {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error, enabling error chain traversal
// with Go's standard error handling functions like errors.Is and errors.As.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DBError with the same code.
func (e *DBError) Is(target error) bool {
	t, ok := target.(*DBError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *DBError) FormatStack() string {
	if e.stack == nil {
		return ""
	}
	return fmt.Sprintf("Stack trace:%+v", e.stack)
}
