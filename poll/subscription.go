package poll

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// completionPolicy is the per-policy completion state machine. Every method
// is called with the subscription lock held; implementations never block and
// never call back into the subscription.
type completionPolicy[T any] interface {
	name() string

	// started records a new invocation at tick time, before its operation
	// goroutine is launched.
	started(inv *invocation[T])

	// succeeded processes a value outcome. It returns the results that just
	// became deliverable, oldest first, and whether the result was accepted
	// at all. Ordered may accept a result yet return nothing (head still
	// pending); RecentOnly rejects a result whose invocation was already
	// superseded by a newer completion.
	succeeded(inv *invocation[T], v T) (emit []T, accepted bool)

	// failed processes an error outcome, just before the stream fails
	// terminally. RecentOnly uses it to retract older pending invocations.
	failed(inv *invocation[T])
}

// Subscription is a live periodic invocation stream. Create one with
// Ordered, Unordered or RecentOnly; it is safe for concurrent use.
type Subscription[T any] struct {
	cfg config
	fn  Func[T]

	out  chan T
	wake chan struct{}

	// master covers the whole subscription (Stop / parent context); work is
	// its child and additionally ends on terminal failure, so the emitter
	// can keep flushing accepted results while ticking and invocations wind
	// down.
	master     context.Context
	stopMaster context.CancelFunc
	work       context.Context
	stopWork   context.CancelFunc

	wg sync.WaitGroup

	mu      sync.Mutex
	pol     completionPolicy[T]
	state   State
	nextSeq uint64
	err     error
	closing bool // emitter closes Results after draining pending
	pending []T  // accepted results not yet handed to the subscriber

	started   uint64
	inFlight  int
	delivered uint64
	cancelled uint64
}

func newSubscription[T any](ctx context.Context, pol completionPolicy[T], period time.Duration, fn Func[T], opts []Option) *Subscription[T] {
	if fn == nil {
		panic("poll: operation Func is nil")
	}
	if period <= 0 {
		panic(fmt.Sprintf("poll: period=%s is invalid (must be > 0)", period))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.buffer < 0 {
		panic(fmt.Sprintf("poll: WithBuffer(%d) is invalid (must be >= 0)", cfg.buffer))
	}

	master, stopMaster := context.WithCancel(ctx)
	work, stopWork := context.WithCancel(master)

	s := &Subscription[T]{
		cfg:        cfg,
		fn:         fn,
		out:        make(chan T, cfg.buffer),
		wake:       make(chan struct{}, 1),
		master:     master,
		stopMaster: stopMaster,
		work:       work,
		stopWork:   stopWork,
		pol:        pol,
		state:      StateRunning,
	}

	s.wg.Add(2)
	go s.emitLoop()
	go s.tickLoop(period)
	return s
}

// Results returns the stream of delivered results, in the order dictated by
// the completion policy. It is closed when the subscription terminates;
// callers must drain it. After it is closed, Err reports the terminal error,
// if any.
func (s *Subscription[T]) Results() <-chan T { return s.out }

// Err returns the terminal error of the stream: the first operation error
// (or ErrPanicked), or nil if the subscription was stopped normally. It is
// meaningful once Results is closed.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop unsubscribes: no further results are delivered and every outstanding
// invocation's context is cancelled. Stop is idempotent and safe to call
// concurrently with in-flight completions.
func (s *Subscription[T]) Stop() {
	s.mu.Lock()
	if s.state == StateRunning {
		s.state = StateStopping
	}
	s.mu.Unlock()
	s.stopMaster()
}

// Wait blocks until all internal goroutines (ticker, emitter and invocation
// runners) have exited. Operations that ignore cancellation delay Wait.
func (s *Subscription[T]) Wait() {
	s.wg.Wait()
}

// Stats returns a point-in-time snapshot of the subscription.
func (s *Subscription[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Name:      s.cfg.name,
		Policy:    s.pol.name(),
		State:     s.state,
		Started:   s.started,
		InFlight:  s.inFlight,
		Delivered: s.delivered,
		Cancelled: s.cancelled,
	}
}

// tickLoop fires the zero-delay first tick, then one tick per period until
// the work scope ends or the subscription leaves the running state.
func (s *Subscription[T]) tickLoop(period time.Duration) {
	defer s.wg.Done()

	if !s.startInvocation() {
		return
	}

	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-s.work.Done():
			return
		case <-t.C:
			if !s.startInvocation() {
				return
			}
		}
	}
}

// startInvocation processes one tick: it assigns the next sequence number,
// registers the invocation with the policy, and launches the operation. The
// operation starts synchronously with tick processing, never lazily.
func (s *Subscription[T]) startInvocation() bool {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(s.work)
	inv := &invocation[T]{
		seq:       s.nextSeq,
		ctx:       ctx,
		cancel:    cancel,
		startedAt: time.Now(),
	}
	s.nextSeq++
	s.started++
	s.inFlight++
	s.pol.started(inv)
	s.mu.Unlock()

	if s.cfg.onInvocationStart != nil {
		info := InvocationStartInfo{
			Name:      s.cfg.name,
			Sequence:  inv.seq,
			StartedAt: inv.startedAt,
		}
		callHookNoPanic(s.cfg.name, inv.seq, s.cfg.onInvocationStart, info)
	}

	s.wg.Add(1)
	go s.runInvocation(inv)
	return true
}

// settle is the single completion path. The subscription lock serializes
// concurrent completions, so no two of them interleave their read-modify-
// write of policy state, and classifies the outcome:
//
//   - cancelled: the invocation's scope was cancelled before it settled;
//     whatever the operation answered with, the outcome is discarded.
//   - error: terminal. RecentOnly retracts older entries first; the stream
//     then fails with this error.
//   - success: the policy decides what (if anything) becomes deliverable.
func (s *Subscription[T]) settle(inv *invocation[T], v T, err error, panicked bool) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	// An error from an already-cancelled invocation is a cancellation, not a
	// failure, regardless of the error's identity. A retracted invocation may
	// answer its cancel with any error it likes; it must not kill the stream.
	if err != nil && !panicked && inv.ctx.Err() != nil {
		s.cancelled++
		return OutcomeCancelled
	}

	if s.state != StateRunning {
		// Stream already stopped or failed; late outcomes are discarded.
		if inv.ctx.Err() != nil {
			s.cancelled++
			return OutcomeCancelled
		}
		// Settled in the window between the state change and the scope
		// cancellation; discarded either way.
		if err != nil {
			return OutcomeError
		}
		return OutcomeSuccess
	}

	if err != nil {
		s.pol.failed(inv)
		s.failLocked(err)
		return OutcomeError
	}

	emit, accepted := s.pol.succeeded(inv, v)
	if !accepted {
		// The invocation was superseded by a newer completion; its result
		// is discarded.
		s.cancelled++
		return OutcomeCancelled
	}
	if len(emit) > 0 {
		s.pending = append(s.pending, emit...)
		s.signalEmitter()
	}
	return OutcomeSuccess
}

// failLocked records the first terminal error, stops ticking, and cancels
// every outstanding invocation. The emitter keeps running on the master
// scope to flush already-accepted results before closing Results.
func (s *Subscription[T]) failLocked(err error) {
	s.err = err
	s.state = StateStopping
	s.closing = true
	s.stopWork()
	s.signalEmitter()
}

func (s *Subscription[T]) signalEmitter() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// emitLoop is the single delivery goroutine: it serializes all downstream
// emissions, so the subscriber never observes interleaved deliveries.
func (s *Subscription[T]) emitLoop() {
	defer s.wg.Done()
	defer s.finish()

	for {
		select {
		case <-s.master.Done():
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				closing := s.closing
				s.mu.Unlock()
				if closing {
					return
				}
				break
			}
			v := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			select {
			case s.out <- v:
				s.mu.Lock()
				s.delivered++
				s.mu.Unlock()
			case <-s.master.Done():
				return
			}
		}
	}
}

func (s *Subscription[T]) finish() {
	s.mu.Lock()
	s.state = StateStopped
	s.pending = nil
	s.mu.Unlock()
	// Terminal failure stops the work scope but not the master scope; cancel
	// it here so a failed subscription releases its parent-context hook.
	s.stopMaster()
	close(s.out)
}
