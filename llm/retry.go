package llm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Retrier handles retry logic for provider operations
type Retrier struct {
	config RetryConfig
	rand   *rand.Rand
}

// NewRetrier creates a new retrier with the given configuration
func NewRetrier(config RetryConfig) *Retrier {
	return &Retrier{
		config: config,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RetryOperation represents an operation that can be retried
type RetryOperation[T any] func(ctx context.Context, attempt int) (T, error)

// Execute executes an operation with retry logic
func Execute[T any](r *Retrier, ctx context.Context, operation RetryOperation[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		// Check if context is cancelled
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		// Execute the operation
		result, err := operation(ctx, attempt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Check if we should retry
		if !r.shouldRetry(err, attempt) {
			// If we've reached max retries, return an exhaustion error to signal retry policy completed
			if attempt >= r.config.MaxRetries {
				return zero, fmt.Errorf("operation failed after %d attempts: %w", r.config.MaxRetries+1, err)
			}
			return zero, err
		}

		// Calculate delay
		delay := r.calculateDelay(attempt, err)

		// Wait before retry
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
			// Continue to next attempt
		}
	}

	return zero, fmt.Errorf("operation failed after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}

// shouldRetry determines if an operation should be retried
func (r *Retrier) shouldRetry(err error, attempt int) bool {
	// Don't retry if we've exceeded max attempts
	if attempt >= r.config.MaxRetries {
		return false
	}

	// Check if it's a provider error and retryable
	if provErr, ok := IsProviderError(err); ok {
		return provErr.IsRetryable()
	}

	// Check against configured retryable error types/messages
	errStr := err.Error()
	for _, retryableErr := range r.config.RetryableErrors {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(retryableErr)) {
			return true
		}
	}

	return false
}

// calculateDelay calculates the delay before the next retry
func (r *Retrier) calculateDelay(attempt int, err error) time.Duration {
	// Check if the error specifies a retry-after value
	if provErr, ok := IsProviderError(err); ok && provErr.RetryAfter > 0 {
		return time.Duration(provErr.RetryAfter) * time.Second
	}

	// Exponential backoff with jitter
	base := float64(r.config.InitialDelay)
	delay := base * math.Pow(r.config.BackoffFactor, float64(attempt))

	// Add jitter (±25%)
	jitter := 0.25 * delay * (r.rand.Float64()*2 - 1)
	delay += jitter

	// Ensure we don't exceed max delay
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	// Ensure minimum delay
	if delay < float64(r.config.InitialDelay) {
		delay = float64(r.config.InitialDelay)
	}

	return time.Duration(delay)
}
