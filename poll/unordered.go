package poll

// unorderedPolicy delivers each result as soon as it completes. There is no
// ordering state; serialization of concurrent completions is the
// subscription lock's job.
type unorderedPolicy[T any] struct{}

func (unorderedPolicy[T]) name() string { return "unordered" }

func (unorderedPolicy[T]) started(inv *invocation[T]) {}

func (unorderedPolicy[T]) succeeded(inv *invocation[T], v T) ([]T, bool) {
	return []T{v}, true
}

func (unorderedPolicy[T]) failed(inv *invocation[T]) {}
