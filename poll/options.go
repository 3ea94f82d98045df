package poll

type config struct {
	name   string
	buffer int

	onPanic PanicHandler

	// hooks
	onInvocationStart  func(info InvocationStartInfo)
	onInvocationFinish func(info InvocationFinishInfo)
}

// Option configures a subscription at creation time.
type Option func(*config)

// WithName sets a human-friendly name used in panic reports and hook infos.
//
// Name is optional (empty means unnamed).
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithBuffer sets the capacity of the Results channel.
//
// Default is 0 (unbuffered). Buffering does not change delivery order or the
// no-backpressure behavior; it only decouples the consumer from the internal
// delivery goroutine.
//
// If n < 0, the subscription constructor panics (configuration error).
func WithBuffer(n int) Option {
	return func(c *config) { c.buffer = n }
}

// WithPanicHandler sets the panic handler. If not set, panics are reported to
// stderr by default. Either way, a panicking operation ends the stream with
// ErrPanicked.
//
// Panics in the handler are contained: they are recovered and reported to
// stderr.
func WithPanicHandler(h PanicHandler) Option {
	return func(c *config) { c.onPanic = h }
}

// WithOnInvocationStart sets a hook to observe invocation starts.
//
// Hooks are called synchronously on the invocation path. They must be fast
// and must not block.
func WithOnInvocationStart(fn func(info InvocationStartInfo)) Option {
	return func(c *config) { c.onInvocationStart = fn }
}

// WithOnInvocationFinish sets a hook to observe invocation completions,
// including cancelled ones. Hooks are called synchronously.
func WithOnInvocationFinish(fn func(info InvocationFinishInfo)) Option {
	return func(c *config) { c.onInvocationFinish = fn }
}
