package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/evan-idocoding/pollkit/poll"
)

// referenceDelays are per-invocation completion delays, relative to each
// invocation's own start. With a 50ms period this makes the absolute
// completion order [0, 2, 1], which tells the three policies apart:
// ordered delivers [0 1 2], unordered [0 2 1], recent-only [0 2].
var referenceDelays = []time.Duration{
	0,
	150 * time.Millisecond,
	50 * time.Millisecond,
}

// runScenario subscribes with the named policy, lets the scenario play out,
// unsubscribes after stopAfter, and returns the delivered values in order.
// Invocations beyond the configured delays run long and are cancelled by the
// unsubscribe.
func runScenario(policy string, period time.Duration, delays []time.Duration, stopAfter time.Duration, logger *zap.Logger) ([]int, error) {
	var n atomic.Int64
	fn := func(ctx context.Context) (int, error) {
		i := int(n.Add(1) - 1)
		d := 10 * period
		if i < len(delays) {
			d = delays[i]
		}
		select {
		case <-time.After(d):
			return i, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	onFinish := poll.WithOnInvocationFinish(func(info poll.InvocationFinishInfo) {
		if info.Outcome == poll.OutcomeCancelled {
			logger.Debug("invocation cancelled",
				zap.Uint64("seq", info.Sequence),
				zap.Duration("after", info.Duration),
			)
		}
	})

	ctx := context.Background()
	var sub *poll.Subscription[int]
	switch policy {
	case "ordered":
		sub = poll.Ordered(ctx, period, fn, poll.WithName(policy), onFinish)
	case "unordered":
		sub = poll.Unordered(ctx, period, fn, poll.WithName(policy), onFinish)
	case "recent", "recent-only":
		sub = poll.RecentOnly(ctx, period, fn, poll.WithName(policy), onFinish)
	default:
		return nil, fmt.Errorf("unknown policy %q (want ordered, unordered or recent)", policy)
	}

	stop := time.AfterFunc(stopAfter, sub.Stop)
	defer stop.Stop()

	var delivered []int
	for v := range sub.Results() {
		logger.Info("delivered", zap.String("policy", policy), zap.Int("invocation", v))
		delivered = append(delivered, v)
	}
	sub.Wait()

	st := sub.Stats()
	logger.Info("scenario finished",
		zap.String("policy", policy),
		zap.Uint64("started", st.Started),
		zap.Uint64("delivered", st.Delivered),
		zap.Uint64("cancelled", st.Cancelled),
	)
	return delivered, sub.Err()
}
