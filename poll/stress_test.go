package poll

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

// These are "property-ish" tests: they exercise concurrency paths with
// random completion delays and assert the ordering invariants without
// relying on exact timing. They must finish quickly or fail.

func randomDelayOp(maxDelay time.Duration) (Func[int64], *atomic.Int64) {
	var next atomic.Int64
	fn := func(ctx context.Context) (int64, error) {
		i := next.Add(1) - 1
		d := time.Duration(rand.Int63n(int64(maxDelay)))
		select {
		case <-time.After(d):
			return i, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return fn, &next
}

func collect(sub *Subscription[int64]) (<-chan struct{}, *[]int64) {
	var got []int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range sub.Results() {
			got = append(got, v)
		}
	}()
	return done, &got
}

func TestStress_OrderedRandomDelays_DeliveryInStartOrder(t *testing.T) {
	fn, _ := randomDelayOp(8 * time.Millisecond)
	sub := Ordered(context.Background(), 3*time.Millisecond, fn)
	done, got := collect(sub)

	time.Sleep(150 * time.Millisecond)
	sub.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Results did not close (potential deadlock)")
	}
	sub.Wait()

	if len(*got) == 0 {
		t.Fatalf("expected some deliveries")
	}
	for i, v := range *got {
		if v != int64(i) {
			t.Fatalf("delivery %d = %d, want %d (start order violated)", i, v, i)
		}
	}
}

func TestStress_RecentOnlyRandomDelays_SequencesIncrease(t *testing.T) {
	fn, _ := randomDelayOp(8 * time.Millisecond)
	sub := RecentOnly(context.Background(), 3*time.Millisecond, fn)
	done, got := collect(sub)

	time.Sleep(150 * time.Millisecond)
	sub.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Results did not close (potential deadlock)")
	}
	sub.Wait()

	if len(*got) == 0 {
		t.Fatalf("expected some deliveries")
	}
	for i := 1; i < len(*got); i++ {
		if (*got)[i] <= (*got)[i-1] {
			t.Fatalf("deliveries %v not strictly increasing at index %d", *got, i)
		}
	}
}

func TestStress_StopDuringCompletions_NoDeadlock(t *testing.T) {
	fn, _ := randomDelayOp(4 * time.Millisecond)
	sub := Unordered(context.Background(), time.Millisecond, fn)
	done, _ := collect(sub)

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		go sub.Stop()
	}
	sub.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Results did not close (potential deadlock)")
	}

	waited := make(chan struct{})
	go func() {
		sub.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatalf("Wait did not return (leaked goroutines)")
	}

	st := sub.Stats()
	if st.State != StateStopped {
		t.Fatalf("State=%v, want StateStopped", st.State)
	}
	if st.InFlight != 0 {
		t.Fatalf("InFlight=%d, want 0", st.InFlight)
	}
	if st.Delivered+st.Cancelled > st.Started {
		t.Fatalf("Delivered=%d + Cancelled=%d exceeds Started=%d", st.Delivered, st.Cancelled, st.Started)
	}
}
