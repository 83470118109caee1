// Package fastdom batches reads (measurements) and writes (mutations) of
// rendered state so that, within every frame, all reads run before all
// writes. Interleaving the two forces a renderer to recompute layout after
// every write that is followed by a read (layout thrashing); batching them
// removes that cost.
//
// The scheduler itself lives in the core package. This package re-exports
// its types and offers a process-wide default instance running on a
// dedicated FrameLoop.
//
// # Quick Start
//
// Initialize the default instance at application startup:
//
//	fastdom.InitDefault(nil) // 60Hz frames
//	defer fastdom.ShutdownDefault()
//
// The scheduler belongs to the loop goroutine. From other goroutines, hand
// work to the loop with Post:
//
//	fastdom.Post(func() {
//		fastdom.Read(func(ctx context.Context) {
//			h := box.Height()
//			fastdom.Write(func(ctx context.Context) {
//				other.SetHeight(h)
//			})
//		})
//	})
//
// # Key Concepts
//
// Read / Measure: a task observing rendered state. Reads of a frame run
// together, before any write.
//
// Write / Mutate: a task changing rendered state. A write submitted by a
// read runs in the same frame; a read submitted by a write waits for the next.
//
// Defer: a task run after a number of frame boundaries, ahead of that
// frame's reads.
//
// Sandbox: a cancellation scope. ClearAll cancels every task submitted
// through it that has not started yet.
//
// # Thread Safety
//
// A Scheduler is single-threaded, like the frame callbacks of the renderer it
// serves. Every call must happen on the goroutine running its host's
// callbacks: inside a task, or inside a function passed to Post or Do.
// Stats and RecentTasks are the exceptions and may be called from anywhere.
//
// # Example
//
//	import (
//		"context"
//		"github.com/Swind/go-fastdom"
//	)
//
//	func main() {
//		fastdom.InitDefault(nil)
//		defer fastdom.ShutdownDefault()
//
//		done := make(chan struct{})
//		fastdom.Post(func() {
//			fastdom.Write(func(ctx context.Context) {
//				println("write")
//				close(done)
//			})
//			fastdom.Read(func(ctx context.Context) {
//				println("read") // printed first
//			})
//		})
//		<-done
//	}
package fastdom
