package core

import "context"

// Submitter is implemented by Scheduler and Sandbox.
type Submitter interface {
	Read(task Task) TaskID
	Write(task Task) TaskID
}

var (
	_ Submitter = (*Scheduler)(nil)
	_ Submitter = (*Sandbox)(nil)
)

// MeasureFunc reads rendered state and returns what the mutation needs.
type MeasureFunc[T any] func(ctx context.Context) (T, error)

// MutateFunc applies a mutation based on a measurement.
type MutateFunc[T any] func(ctx context.Context, result T, err error)

// =============================================================================
// Measure then Mutate
// =============================================================================

// MeasureThenMutate schedules measure as a read. When it returns, mutate is
// scheduled as a write with its result; because the write is submitted during
// the read phase it runs in the write phase of the same flush.
//
// If measure panics, mutate is not scheduled and the panic is handled like
// any other task failure.
//
// The returned id is the read's; clearing it before the flush cancels both.
//
// Example:
//
//	MeasureThenMutate(s,
//	    func(ctx context.Context) (int, error) {
//	        return box.Height(), nil
//	    },
//	    func(ctx context.Context, h int, err error) {
//	        if err == nil {
//	            other.SetHeight(h)
//	        }
//	    },
//	)
func MeasureThenMutate[T any](s Submitter, measure MeasureFunc[T], mutate MutateFunc[T]) TaskID {
	if measure == nil || mutate == nil {
		panic(ErrNilTask)
	}

	// Captured by both closures; the write always starts after the read returned.
	var result T
	var err error

	wrappedMutate := func(ctx context.Context) {
		mutate(ctx, result, err)
	}

	return s.Read(func(ctx context.Context) {
		result, err = measure(ctx)
		s.Write(wrappedMutate)
	})
}
