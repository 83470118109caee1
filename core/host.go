package core

// Host is the environment a Scheduler runs in.
//
// RequestFrame asks for one future invocation of fn, at or before the next
// render. The Scheduler never has more than one request outstanding.
// All callbacks must be invoked on the goroutine that drives the Scheduler.
type Host interface {
	RequestFrame(fn func())
}

// MicrotaskHost is a Host that can also run a callback at microtask priority,
// i.e. after the current callback returns and before the next frame.
type MicrotaskHost interface {
	Host
	QueueMicrotask(fn func())
}
