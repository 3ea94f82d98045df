package poll

import (
	"context"
	"time"
)

// Ordered subscribes to fn invoked once per period, delivering results
// strictly in start order. Invocations run concurrently; out-of-order
// completions are buffered until every earlier result has been delivered.
//
// The first invocation starts immediately. The returned subscription runs
// until Stop is called, ctx is cancelled, or an invocation fails.
//
// The period must be > 0 and fn non-nil; otherwise Ordered panics
// (configuration error). If ctx is nil, it is treated as
// context.Background().
func Ordered[T any](ctx context.Context, period time.Duration, fn Func[T], opts ...Option) *Subscription[T] {
	return newSubscription(ctx, newOrderedPolicy[T](), period, fn, opts)
}

// Unordered subscribes to fn invoked once per period, delivering each result
// as soon as it completes. Delivery order is completion order; simultaneous
// completions are serialized in an arbitrary order.
//
// Lifecycle and validation match Ordered.
func Unordered[T any](ctx context.Context, period time.Duration, fn Func[T], opts ...Option) *Subscription[T] {
	return newSubscription(ctx, unorderedPolicy[T]{}, period, fn, opts)
}

// RecentOnly subscribes to fn invoked once per period, delivering a result
// only if no later-started invocation completed first. A completion cancels
// every still-pending invocation that started before it; invocations started
// after it keep running. Delivered results have strictly increasing start
// order, with gaps where slow invocations were superseded.
//
// Lifecycle and validation match Ordered.
func RecentOnly[T any](ctx context.Context, period time.Duration, fn Func[T], opts ...Option) *Subscription[T] {
	return newSubscription(ctx, newRecentOnlyPolicy[T](), period, fn, opts)
}
