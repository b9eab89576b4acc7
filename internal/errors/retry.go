package errors

import (
	"context"
	"time"
)

// RetryConfig configures retry behavior. The delay schedule is deterministic
// (no jitter) so retry timing is exact in tests.
type RetryConfig struct {
	MaxAttempts  int           // Total attempts including the first (minimum 1)
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Ceiling for the growing delay
	Multiplier   float64       // Delay multiplier between attempts
}

// DefaultRetryConfig returns the scanner defaults: three attempts with a
// short doubling delay between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// Retrier implements bounded retry with exponential delay.
type Retrier struct {
	config RetryConfig
}

// NewRetrier creates a new retrier.
func NewRetrier(config RetryConfig) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Multiplier < 1 {
		config.Multiplier = 1
	}
	return &Retrier{config: config}
}

// RetryResult holds the outcome of a retried operation.
type RetryResult struct {
	Attempts  int           // Number of attempts made
	LastError error         // The last error encountered
	Duration  time.Duration // Total time spent including delays
	Success   bool          // Whether the operation succeeded
}

// Do executes fn until it succeeds, the attempt budget is spent, or the
// context is cancelled. Errors are absorbed into the result, never
// propagated.
func (r *Retrier) Do(ctx context.Context, url string, fn func(ctx context.Context) error) *RetryResult {
	result := &RetryResult{}
	start := time.Now()
	delay := r.config.InitialDelay

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		result.Attempts = attempt

		err := fn(ctx)
		if err == nil {
			result.Success = true
			result.Duration = time.Since(start)
			return result
		}
		result.LastError = err

		if ctx.Err() != nil {
			result.LastError = NewCancelledError(url, "inspect")
			break
		}
		if attempt == r.config.MaxAttempts || !r.shouldRetry(err) {
			break
		}

		select {
		case <-ctx.Done():
			result.LastError = NewCancelledError(url, "inspect")
			result.Duration = time.Since(start)
			return result
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * r.config.Multiplier)
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}

	result.Duration = time.Since(start)
	return result
}

// shouldRetry checks if an error warrants another attempt.
func (r *Retrier) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	// Uncategorized errors out of a live browser session are retried too;
	// the attempt bound keeps that safe.
	if GetErrorType(err) == Unknown {
		return true
	}
	return IsRetryable(err)
}

// DoWithResult executes a function that returns a value and error.
func DoWithResult[T any](ctx context.Context, r *Retrier, url string, fn func(ctx context.Context) (T, error)) (T, *RetryResult) {
	var value T

	retryResult := r.Do(ctx, url, func(ctx context.Context) error {
		var err error
		value, err = fn(ctx)
		return err
	})

	return value, retryResult
}
