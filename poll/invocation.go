package poll

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// invocation is one call to the user operation: a start-order sequence
// number, the invocation's own cancellation scope (child of the work scope),
// and its start time. Sequence numbers are assigned on the tick path under
// the subscription lock, so they are unique, strictly increasing and
// gap-free.
type invocation[T any] struct {
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc

	startedAt time.Time
}

// runInvocation executes one invocation on its own goroutine, recovering
// panics, classifying the outcome, and handing it to the completion path.
func (s *Subscription[T]) runInvocation(inv *invocation[T]) {
	defer s.wg.Done()
	defer inv.cancel()

	v, err, panicked := s.callOperation(inv)
	outcome := s.settle(inv, v, err, panicked)

	if s.cfg.onInvocationFinish != nil {
		finishedAt := time.Now()
		info := InvocationFinishInfo{
			Name:       s.cfg.name,
			Sequence:   inv.seq,
			Outcome:    outcome,
			StartedAt:  inv.startedAt,
			FinishedAt: finishedAt,
			Duration:   finishedAt.Sub(inv.startedAt),
			Panicked:   panicked,
		}
		if outcome == OutcomeError && err != nil {
			info.Err = err.Error()
		}
		callHookNoPanic(s.cfg.name, inv.seq, s.cfg.onInvocationFinish, info)
	}
}

// callOperation invokes the user operation, converting a panic into an
// ErrPanicked-wrapped error after reporting it.
func (s *Subscription[T]) callOperation(inv *invocation[T]) (v T, err error, panicked bool) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		panicked = true
		err = fmt.Errorf("%w: %v", ErrPanicked, p)
		s.reportPanic(inv, p, debug.Stack())
	}()
	v, err = s.fn(inv.ctx)
	return v, err, panicked
}

func (s *Subscription[T]) reportPanic(inv *invocation[T], p any, stack []byte) {
	if s.cfg.onPanic == nil {
		reportPanicToStderr(s.cfg.name, inv.seq, p, stack)
		return
	}
	info := PanicInfo{
		Name:     s.cfg.name,
		Sequence: inv.seq,
		Value:    p,
		Stack:    stack,
	}
	callHookNoPanic(s.cfg.name, inv.seq, func(i PanicInfo) { s.cfg.onPanic(i) }, info)
}

func callHookNoPanic[I any](name string, seq uint64, h func(I), info I) {
	defer func() {
		if p := recover(); p != nil {
			reportPanicToStderr(name, seq, fmt.Sprintf("poll: hook panicked: %v", p), debug.Stack())
		}
	}()
	h(info)
}
