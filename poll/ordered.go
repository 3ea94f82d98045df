package poll

// orderedPolicy delivers results strictly in start order. Invocations run
// concurrently; a result that completes before an earlier invocation's is
// buffered until the earlier one settles. Only the slowest-so-far invocation
// gates delivery.
type orderedPolicy[T any] struct {
	head     uint64 // sequence whose result is delivered next
	buffered map[uint64]T
}

func newOrderedPolicy[T any]() *orderedPolicy[T] {
	return &orderedPolicy[T]{buffered: make(map[uint64]T)}
}

func (p *orderedPolicy[T]) name() string { return "ordered" }

func (p *orderedPolicy[T]) started(inv *invocation[T]) {}

func (p *orderedPolicy[T]) succeeded(inv *invocation[T], v T) ([]T, bool) {
	p.buffered[inv.seq] = v

	// Release the head and everything already buffered behind it.
	var emit []T
	for {
		v, ok := p.buffered[p.head]
		if !ok {
			break
		}
		delete(p.buffered, p.head)
		p.head++
		emit = append(emit, v)
	}
	return emit, true
}

func (p *orderedPolicy[T]) failed(inv *invocation[T]) {
	// No partial ordering past a failure; buffered results are abandoned.
}
