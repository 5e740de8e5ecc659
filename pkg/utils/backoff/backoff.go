package backoff

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// Policy bounds a poll loop: a fixed interval between attempts and a hard
// attempt limit. Remote sync waits must never be unbounded.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Wait polls cond until it reports done, the attempt budget runs out, or ctx
// is cancelled. cond errors abort the wait immediately.
func (p Policy) Wait(ctx context.Context, cond func(ctx context.Context) (bool, error)) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		done, err := cond(ctx)
		if err != nil {
			return goerr.Wrap(err, "wait condition failed", goerr.V("attempt", i+1))
		}
		if done {
			return nil
		}

		if err := Sleep(ctx, p.Interval); err != nil {
			return err
		}
	}

	return goerr.Wrap(model.ErrWaitExhausted, "condition not met",
		goerr.V("attempts", attempts),
		goerr.V("interval", p.Interval),
	)
}

// Sleep pauses for d, returning early with ctx.Err() on cancellation
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
