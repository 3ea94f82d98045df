package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestOrdered_DeliveryMatchesStartOrder(t *testing.T) {
	t.Parallel()

	gates := makeGates(3)
	fn, started := gatedOp(gates)
	sub := Ordered(context.Background(), 25*time.Millisecond, fn)
	waitForStarts(t, started, 3)

	close(gates[0])
	if got := recvWithin(t, sub.Results(), time.Second); got != 0 {
		t.Fatalf("first delivery=%d, want 0", got)
	}

	// Invocation 2 completes before 1; its result must be held back.
	close(gates[2])
	expectNone(t, sub.Results(), 60*time.Millisecond)

	close(gates[1])
	if got := recvWithin(t, sub.Results(), time.Second); got != 1 {
		t.Fatalf("second delivery=%d, want 1", got)
	}
	if got := recvWithin(t, sub.Results(), time.Second); got != 2 {
		t.Fatalf("third delivery=%d, want 2", got)
	}

	sub.Stop()
	waitClosed(t, sub.Results(), time.Second)
	sub.Wait()
	if err := sub.Err(); err != nil {
		t.Fatalf("Err=%v, want nil", err)
	}
}

func TestOrdered_ErrorIsTerminal(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var n atomic.Int64
	fn := func(ctx context.Context) (int, error) {
		switch n.Add(1) - 1 {
		case 0:
			return 0, nil
		case 1:
			return 0, boom
		default:
			<-ctx.Done()
			return 0, ctx.Err()
		}
	}
	sub := Ordered(context.Background(), 20*time.Millisecond, fn)

	if got := recvWithin(t, sub.Results(), time.Second); got != 0 {
		t.Fatalf("delivery=%d, want 0", got)
	}
	waitClosed(t, sub.Results(), time.Second)
	sub.Wait()

	if !errors.Is(sub.Err(), boom) {
		t.Fatalf("Err=%v, want boom", sub.Err())
	}

	// No further invocations after the failure.
	after := n.Load()
	time.Sleep(80 * time.Millisecond)
	if got := n.Load(); got != after {
		t.Fatalf("invocations kept starting after terminal error: %d -> %d", after, got)
	}
}

func TestOrdered_ConcurrentInvocationsStillStartEveryTick(t *testing.T) {
	t.Parallel()

	// Invocations overlap (none completes), yet one starts per tick.
	var started atomic.Int64
	fn := func(ctx context.Context) (int, error) {
		started.Add(1)
		<-ctx.Done()
		return 0, ctx.Err()
	}
	sub := Ordered(context.Background(), 10*time.Millisecond, fn)
	waitForStarts(t, &started, 4)

	sub.Stop()
	waitClosed(t, sub.Results(), time.Second)
	sub.Wait()
}
