package poll

import (
	"context"
	"fmt"
	"time"
)

// Func is the user-provided operation invoked once per tick.
//
// The context is cancelled when the subscription stops, when the stream fails
// terminally, or (RecentOnly) when a later-started invocation completes
// first. The operation is expected to observe cancellation and return within
// a bounded time, typically with ctx.Err().
type Func[T any] func(ctx context.Context) (T, error)

// Outcome classifies how a single invocation settled.
type Outcome int

const (
	// OutcomeSuccess means the operation returned a value.
	OutcomeSuccess Outcome = iota
	// OutcomeError means the operation returned a non-cancellation error
	// (or panicked). The first such outcome is terminal for the stream.
	OutcomeError
	// OutcomeCancelled means the invocation's outcome was discarded: its
	// context was cancelled before it settled, or a newer completion
	// superseded it. Not an error, whatever the operation returned.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// State is the high-level lifecycle state of a subscription.
type State int

const (
	// StateRunning means ticks are being processed and results delivered.
	StateRunning State = iota
	// StateStopping means the subscription is winding down: no new
	// invocations start, Results has not been closed yet.
	StateStopping
	// StateStopped means Results has been closed.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats is a point-in-time snapshot of a subscription.
type Stats struct {
	// Name is the configured name (may be empty).
	Name string
	// Policy is the completion policy name: "ordered", "unordered" or
	// "recent-only".
	Policy string
	State  State

	// Started counts invocations created so far (one per tick).
	Started uint64
	// InFlight counts invocations that have not settled yet.
	InFlight int
	// Delivered counts results handed to the subscriber.
	Delivered uint64
	// Cancelled counts invocations whose outcome was discarded due to
	// cancellation (stop, terminal failure, or RecentOnly supersession).
	// It matches the invocations the finish hook reports as OutcomeCancelled.
	Cancelled uint64
}

// InvocationStartInfo is passed to OnInvocationStart hooks.
type InvocationStartInfo struct {
	Name     string
	Sequence uint64

	StartedAt time.Time
}

// InvocationFinishInfo is passed to OnInvocationFinish hooks.
type InvocationFinishInfo struct {
	Name     string
	Sequence uint64
	Outcome  Outcome

	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration

	Err      string
	Panicked bool
}

// PanicHandler is called when the operation panics, before the stream fails
// with ErrPanicked.
type PanicHandler func(info PanicInfo)

// PanicInfo describes a recovered operation panic.
type PanicInfo struct {
	Name     string
	Sequence uint64
	Value    any
	Stack    []byte
}
