package fallback

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/synthetix-ai/drafter/pkg/errors"
	"github.com/synthetix-ai/drafter/pkg/logger"
)

// Attempt is one candidate in an ordered fallback chain, bound to a specific
// backend/model combination.
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

type options struct {
	failFast func(error) bool
}

type Option func(*options)

// WithFailFast stops the chain early when the predicate matches a candidate's
// error, instead of moving on to the next candidate.
func WithFailFast(pred func(error) bool) Option {
	return func(o *options) { o.failFast = pred }
}

// Do invokes attempts strictly in order and returns the first success,
// discarding the remaining candidates. Each candidate gets exactly one try.
// If every candidate fails, the returned error wraps pkgerrors.ErrExhaustedFallback
// and joins the full chain of underlying causes.
func Do[T any](ctx context.Context, log logger.Logger, operation string, attempts []Attempt[T], opts ...Option) (T, error) {
	var zero T

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(attempts) == 0 {
		return zero, fmt.Errorf("%s: %w: no candidates", operation, pkgerrors.ErrExhaustedFallback)
	}

	failures := make([]error, 0, len(attempts))
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		result, err := attempt.Run(ctx)
		if err == nil {
			return result, nil
		}

		log.Warn("Fallback candidate failed",
			"operation", operation,
			"candidate", attempt.Name,
			"error", err,
		)
		failures = append(failures, fmt.Errorf("%s: %w", attempt.Name, err))

		if o.failFast != nil && o.failFast(err) {
			log.Warn("Stopping fallback chain early",
				"operation", operation,
				"candidate", attempt.Name,
			)
			break
		}
	}

	return zero, fmt.Errorf("%s: %w: %w", operation, pkgerrors.ErrExhaustedFallback, errors.Join(failures...))
}
