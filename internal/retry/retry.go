package retry

import (
	"context"
	"log/slog"
	"time"
)

// Do runs op under the given policy: one initial attempt plus up to
// MaxRetries retries while ShouldRetry classifies the failure as transient.
// The context is passed into every attempt so in-flight I/O is cut short on
// shutdown, and the backoff sleep honors cancellation the same way. The last
// failure is returned once the attempt budget is exhausted or a terminal
// failure occurs.
func Do(ctx context.Context, p Policy, logger *slog.Logger, op func(ctx context.Context) error) error {
	total := p.MaxRetries + 1
	if total < 1 {
		total = 1
	}

	var (
		lastErr error
		prev    time.Duration
	)
	for attempt := 1; attempt <= total; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == total {
			break
		}
		if p.ShouldRetry == nil || !p.ShouldRetry(lastErr) {
			logger.Debug("terminal failure, not retrying",
				"category", p.Category,
				"attempt", attempt,
				"error", lastErr,
			)
			return lastErr
		}

		delay := p.Delay(attempt, prev)
		prev = delay
		logger.Warn("transient failure, backing off",
			"category", p.Category,
			"attempt", attempt,
			"max_attempts", total,
			"delay", delay,
			"error", lastErr,
		)

		if err := sleep(ctx, delay); err != nil {
			return lastErr
		}
	}
	return lastErr
}

// sleep waits for d or until ctx is done, whichever comes first.
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
