// Package errors provides the error taxonomy for stage-to-stage table copies.
// It pairs structured error codes with the DynamoDB table and operation that
// failed so callers can tell configuration problems from storage failures.
package errors

// ErrorCode represents a specific error condition of a copy run.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a table does not exist in the requested stage.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Permission errors.

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the request or an item was rejected as malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation,
	// such as a table without a partition key or an invalid copy configuration.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeDatabase indicates a storage engine operation failed.
	CodeDatabase ErrorCode = "DATABASE_ERROR"

	// CodeNetwork indicates the storage engine could not be reached.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit or was cancelled.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeRateLimit indicates provisioned throughput or request limits were exceeded.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Retryable reports whether an error with this code is worth retrying.
func (c ErrorCode) Retryable() bool {
	switch c {
	case CodeRateLimit, CodeNetwork:
		return true
	default:
		return false
	}
}
