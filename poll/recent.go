package poll

// recentOnlyPolicy delivers a result only if no later-started invocation
// completed first. It keeps a FIFO queue of pending invocations in start
// order: a completion retracts (cancels and discards) every older entry and
// leaves newer ones running. A single "latest" slot would not be enough: an
// older invocation may legitimately finish first when a newer one runs long,
// and the queue records exactly which entries to retract at that moment.
//
// All methods run under the subscription lock, so concurrent completions
// cannot double-cancel or skip an entry.
type recentOnlyPolicy[T any] struct {
	queue []*invocation[T] // pending invocations, oldest first
}

func newRecentOnlyPolicy[T any]() *recentOnlyPolicy[T] {
	return &recentOnlyPolicy[T]{}
}

func (p *recentOnlyPolicy[T]) name() string { return "recent-only" }

func (p *recentOnlyPolicy[T]) started(inv *invocation[T]) {
	p.queue = append(p.queue, inv)
}

func (p *recentOnlyPolicy[T]) succeeded(inv *invocation[T], v T) ([]T, bool) {
	if !p.retract(inv) {
		// Already dequeued: a newer completion raced ahead and cancelled
		// this invocation before its result landed. It lost; emit nothing.
		return nil, false
	}
	return []T{v}, true
}

// failed still retracts older entries; the caller then fails the stream with
// the invocation's error.
func (p *recentOnlyPolicy[T]) failed(inv *invocation[T]) {
	p.retract(inv)
}

// retract dequeues from the front of the queue, cancelling every entry older
// than inv, until inv itself is dequeued (its context is released by its own
// runner, so it is not re-cancelled here). Entries newer than inv stay
// queued. It reports whether inv was still in the queue.
func (p *recentOnlyPolicy[T]) retract(inv *invocation[T]) bool {
	at := -1
	for i, q := range p.queue {
		if q == inv {
			at = i
			break
		}
	}
	if at < 0 {
		return false
	}
	for _, q := range p.queue[:at] {
		q.cancel()
	}
	p.queue = append(p.queue[:0], p.queue[at+1:]...)
	return true
}
