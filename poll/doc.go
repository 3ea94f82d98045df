// Package poll provides small, standard-library flavored periodic invocation
// combinators: subscribe to the results of a user operation invoked once per
// tick, with a choice of completion policy for overlapping invocations.
//
// # Design highlights
//
//   - Subscription: one live periodic stream; ticks immediately on creation,
//     then once per period, until stopped or terminally failed.
//   - One invocation per tick, always: invocations are allowed to overlap and
//     are never skipped or coalesced.
//   - Completion policy: Ordered, Unordered, or RecentOnly. Policies differ
//     only in how completed results are ordered and which in-flight
//     invocations are superseded.
//   - Two-level cancellation: stopping a subscription cancels every
//     outstanding invocation; RecentOnly additionally cancels individual
//     invocations that lost to a newer completion.
//   - Panic/error reporting: panics in the operation are recovered, reported
//     (handler or stderr by default), and end the stream with ErrPanicked.
//
// # Policies
//
// Ordered delivers results strictly in start order. Invocations still run
// concurrently; a result that completes out of order is buffered until every
// earlier invocation's result has been delivered:
//
//	sub := poll.Ordered(ctx, time.Second, fetch)
//	for v := range sub.Results() {
//		use(v)
//	}
//
// Unordered delivers each result as soon as it completes. Delivery order is
// completion order; simultaneous completions are serialized in an arbitrary
// order.
//
// RecentOnly delivers a result only if no later-started invocation completed
// first. When an invocation completes, every still-pending invocation that
// started before it is cancelled and its eventual outcome discarded.
// Invocations started after the completing one keep running. Delivered
// results therefore have strictly increasing start order, with gaps where
// slow invocations were superseded.
//
// # Lifecycle
//
// A constructor returns immediately and the first invocation starts
// immediately (zero initial delay). The subscription ends in one of two ways:
//
//   - Stop (or cancellation of the parent context): Results is closed with no
//     further deliveries, every outstanding invocation's context is
//     cancelled, and Err reports nil.
//   - A terminal failure: the first invocation that settles with an error (or
//     panics) stops ticking, cancels the other in-flight invocations, and
//     closes Results after flushing already-accepted results. Err reports the
//     failure.
//
// Exactly one error reaches the subscriber, the first to occur. There is no
// retry: callers wanting resilience must handle errors inside their own
// operation and map them to a non-error result.
//
// Stop is idempotent and safe to call concurrently with in-flight
// completions. Wait blocks until all internal goroutines have exited; an
// operation that ignores its context can delay Wait indefinitely, so
// operations are expected to honor cancellation within a bounded time.
//
// # Cancellation contract
//
// The operation receives a context derived from the subscription. The
// contract is cooperative: on cancellation the operation should return
// promptly (typically with ctx.Err()). A settled outcome of a cancelled
// invocation is not an error and is never delivered; it is counted in
// Stats.Cancelled.
//
// # Hooks and observability
//
// WithOnInvocationStart and WithOnInvocationFinish observe individual
// invocations. Hooks are called synchronously on the invocation path; they
// must be fast and must not block. Stats returns a snapshot of counters:
//
//	st := sub.Stats()
//	_ = st.Delivered
//	_ = st.Cancelled
//
// # Backpressure
//
// There is none, by design. Ticks are never dropped and results are never
// coalesced; a slow consumer causes completed results to queue internally.
// WithBuffer adds channel capacity in front of the consumer but does not
// change this behavior. Callers must drain Results until it is closed.
package poll
