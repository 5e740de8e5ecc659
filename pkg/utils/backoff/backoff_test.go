package backoff_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
	"github.com/lsst-sqre/templatebot-aide/pkg/utils/backoff"
)

func TestPolicyWait(t *testing.T) {
	ctx := context.Background()

	t.Run("done on first attempt", func(t *testing.T) {
		calls := 0
		p := backoff.Policy{Interval: time.Millisecond, MaxAttempts: 3}
		err := p.Wait(ctx, func(ctx context.Context) (bool, error) {
			calls++
			return true, nil
		})
		gt.NoError(t, err)
		gt.Equal(t, calls, 1)
	})

	t.Run("retries until done", func(t *testing.T) {
		calls := 0
		p := backoff.Policy{Interval: time.Millisecond, MaxAttempts: 5}
		err := p.Wait(ctx, func(ctx context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
		gt.NoError(t, err)
		gt.Equal(t, calls, 3)
	})

	t.Run("attempt budget exhausts", func(t *testing.T) {
		calls := 0
		p := backoff.Policy{Interval: time.Millisecond, MaxAttempts: 4}
		err := p.Wait(ctx, func(ctx context.Context) (bool, error) {
			calls++
			return false, nil
		})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrWaitExhausted))
		gt.Equal(t, calls, 4)
	})

	t.Run("condition errors abort immediately", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		p := backoff.Policy{Interval: time.Millisecond, MaxAttempts: 5}
		err := p.Wait(ctx, func(ctx context.Context) (bool, error) {
			calls++
			return false, boom
		})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, boom))
		gt.Equal(t, calls, 1)
	})

	t.Run("zero attempts still checks once", func(t *testing.T) {
		calls := 0
		p := backoff.Policy{}
		err := p.Wait(ctx, func(ctx context.Context) (bool, error) {
			calls++
			return true, nil
		})
		gt.NoError(t, err)
		gt.Equal(t, calls, 1)
	})

	t.Run("cancellation interrupts the sleep", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p := backoff.Policy{Interval: time.Hour, MaxAttempts: 2}
		err := p.Wait(cctx, func(ctx context.Context) (bool, error) {
			return false, nil
		})
		gt.True(t, errors.Is(err, context.Canceled))
	})
}

func TestSleep(t *testing.T) {
	t.Run("zero duration returns immediately", func(t *testing.T) {
		gt.NoError(t, backoff.Sleep(context.Background(), 0))
	})

	t.Run("cancelled context returns its error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := backoff.Sleep(ctx, time.Hour)
		gt.True(t, errors.Is(err, context.Canceled))
	})
}
