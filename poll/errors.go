package poll

import "errors"

var (
	// ErrPanicked indicates the operation panicked (the panic is recovered
	// and reported). It is the terminal error of the stream, wrapping the
	// panic value's description; match it with errors.Is.
	ErrPanicked = errors.New("poll: operation panicked")
)
