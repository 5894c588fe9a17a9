package insight

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrUpstream marks failures of the embedding, vector or generative services.
var ErrUpstream = errors.New("upstream service error")

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// RateLimitError is returned when a user asks again before their interval has passed.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.RetryAfter.Round(time.Second))
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least 1.
func (e *RateLimitError) RetryAfterSeconds() int {
	return max(1, int(math.Ceil(e.RetryAfter.Seconds())))
}

// upstream wraps err as an ErrUpstream failure with a short description of the step.
func upstream(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, step, err)
}
