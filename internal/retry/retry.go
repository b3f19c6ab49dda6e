// Package retry provides the bounded polling loop shared by auth readiness
// checks and call-status monitoring.
package retry

import (
	"context"
	"fmt"
	"time"

	"outreach-call-harness/internal/domain"
)

// Budget bounds one polling loop: at most Attempts calls to the probe,
// spaced Interval apart. Exhausting the budget is a timeout outcome, not a
// failure, since the remote side may still be processing.
type Budget struct {
	Attempts int
	Interval time.Duration
}

// Poll invokes probe up to budget.Attempts times. The probe returns
// (value, done, err); done stops the loop immediately with value. A probe
// error consumes the attempt and the loop continues, matching the policy
// that a transport hiccup counts as "not ready" for that attempt. When the
// budget runs out, Poll returns domain.ErrPollBudgetExceeded wrapping the
// last probe error, if any.
func Poll[T any](ctx context.Context, budget Budget, probe func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T
	if budget.Attempts < 1 {
		budget.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= budget.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, domain.E(domain.KindCanceled, "retry.Poll", domain.ErrCanceled)
		}

		v, done, err := probe(ctx)
		if err != nil {
			lastErr = err
		} else if done {
			return v, nil
		}

		if attempt == budget.Attempts {
			break
		}
		if err := sleep(ctx, budget.Interval); err != nil {
			return zero, domain.E(domain.KindCanceled, "retry.Poll", domain.ErrCanceled)
		}
	}

	err := domain.ErrPollBudgetExceeded
	if lastErr != nil {
		err = fmt.Errorf("%w (last error: %v)", domain.ErrPollBudgetExceeded, lastErr)
	}
	return zero, domain.E(domain.KindTimeout, "retry.Poll", err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
