package errors

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// DynamoDB API error codes the copier distinguishes.
const (
	ResourceNotFoundException              = "ResourceNotFoundException"
	AccessDeniedException                  = "AccessDeniedException"
	ProvisionedThroughputExceededException = "ProvisionedThroughputExceededException"
	ThrottlingException                    = "ThrottlingException"
	RequestLimitExceeded                   = "RequestLimitExceeded"
	ValidationException                    = "ValidationException"
)

// Error represents a failed table operation with context about what failed.
// It wraps the underlying AWS SDK error with the table and operation for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "describe", "scan", "delete", "put")
	Op string

	// Table is the physical table name (if applicable)
	Table string

	// Code classifies the failure
	Code ErrorCode

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("dynamodb.%s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("dynamodb.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation, code and underlying error.
func NewError(op string, code ErrorCode, err error) *Error {
	return &Error{
		Op:   op,
		Code: code,
		Err:  err,
	}
}

// NewTableError creates a new Error for a table operation. The code is derived
// from the underlying error and well known API failures are joined with the
// matching sentinel so errors.Is works on the result.
func NewTableError(op, table string, err error) *Error {
	code := Classify(err)
	if sentinel := sentinelFor(code); sentinel != nil && !errors.Is(err, sentinel) {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return &Error{
		Op:    op,
		Table: table,
		Code:  code,
		Err:   err,
	}
}

// Sentinel errors for common copy failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrTableNotFound indicates that the table does not exist in the stage
	ErrTableNotFound = errors.New("dynamodb: table not found")

	// ErrAccessDenied indicates that access to the table is denied
	ErrAccessDenied = errors.New("dynamodb: access denied")

	// ErrThrottled indicates that throughput or request limits were exceeded
	ErrThrottled = errors.New("dynamodb: throughput exceeded")

	// ErrMissingPartitionKey indicates that a table schema has no HASH key entry
	ErrMissingPartitionKey = errors.New("dynamodb: key schema has no partition key")

	// ErrMissingKeyAttribute indicates that a record lacks one of its key attributes
	ErrMissingKeyAttribute = errors.New("dynamodb: record is missing a key attribute")

	// ErrInvalidRequest indicates that the copy request is incomplete or inconsistent
	ErrInvalidRequest = errors.New("copy: invalid request")
)

// Classify maps an error to an ErrorCode.
func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}

	switch {
	case errors.Is(err, ErrMissingPartitionKey):
		return CodeInvalidConfig
	case errors.Is(err, ErrMissingKeyAttribute), errors.Is(err, ErrInvalidRequest):
		return CodeInvalidInput
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CodeTimeout
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case ResourceNotFoundException:
			return CodeNotFound
		case AccessDeniedException:
			return CodeForbidden
		case ProvisionedThroughputExceededException, ThrottlingException, RequestLimitExceeded:
			return CodeRateLimit
		case ValidationException:
			return CodeInvalidInput
		}
		return CodeDatabase
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeNetwork
	}

	return CodeUnknown
}

func sentinelFor(code ErrorCode) error {
	switch code {
	case CodeNotFound:
		return ErrTableNotFound
	case CodeForbidden:
		return ErrAccessDenied
	case CodeRateLimit:
		return ErrThrottled
	default:
		return nil
	}
}

// IsTableNotFound checks if an error indicates that a table was not found.
func IsTableNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsConfigError checks if an error is a configuration problem rather than a storage failure.
func IsConfigError(err error) bool {
	return Classify(err) == CodeInvalidConfig
}
