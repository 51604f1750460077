package copytables

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

// CustomRetryer implements aws.Retryer with exponential backoff and jitter.
// Only throttling and network failures are retried; everything else, including
// missing tables and validation errors, fails on the first attempt.
//
// All fields are immutable after creation, so a CustomRetryer is safe for
// concurrent use.
type CustomRetryer struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewRetryer returns a retryer allowing maxRetries retries after the first attempt.
func NewRetryer(maxRetries int) *CustomRetryer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &CustomRetryer{
		maxAttempts: maxRetries + 1,
		baseDelay:   100 * time.Millisecond,
		maxDelay:    20 * time.Second,
	}
}

// MaxAttempts returns the maximum number of attempts including the first one.
func (r *CustomRetryer) MaxAttempts() int {
	return r.maxAttempts
}

// RetryDelay returns the delay duration for the given attempt number and error,
// implementing exponential backoff with jitter to prevent thundering herd problems.
func (r *CustomRetryer) RetryDelay(attempt int, _ error) (time.Duration, error) {
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * r.baseDelay

	// ±25% jitter
	jitterRange := int64(float64(delay) * 0.25)
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(2*jitterRange) - jitterRange)
	}

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	if delay < 0 {
		delay = 0
	}

	return delay, nil
}

// IsErrorRetryable determines if the given error should be retried.
func (r *CustomRetryer) IsErrorRetryable(err error) bool {
	if err == nil {
		return false
	}
	code := errors.Classify(err)
	if code == errors.CodeTimeout {
		return false
	}
	return code.Retryable()
}

// GetRetryToken always grants a retry; the attempt budget is bounded by MaxAttempts.
func (r *CustomRetryer) GetRetryToken(_ context.Context, _ error) (func(error) error, error) {
	return func(error) error { return nil }, nil
}

// GetInitialToken returns a no-op release function.
func (r *CustomRetryer) GetInitialToken() func(error) error {
	return func(error) error { return nil }
}

var _ aws.Retryer = (*CustomRetryer)(nil)
