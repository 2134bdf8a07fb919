// Package engine defines the producer capability consumed by the stream
// pump: a long, blocking unit of work that writes an interleaved reasoning
// trace to a writer as it executes.
package engine

import (
	"context"
	"io"
)

// Engine executes one query and writes its verbose trace incrementally to
// the trace writer. Invoke blocks until the run completes or fails; the
// pump runs it on its own goroutine so blocking never stalls frame
// delivery.
//
// An Engine handle is constructed once at process start and shared across
// requests by reference. Implementations must tolerate serialized reuse;
// they are not required to support concurrent Invoke calls on the same
// handle.
type Engine interface {
	Invoke(ctx context.Context, query string, trace io.Writer) error
}

// Func adapts a plain function to the Engine interface. Used in tests and
// for scripted traces.
type Func func(ctx context.Context, query string, trace io.Writer) error

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, query string, trace io.Writer) error {
	return f(ctx, query, trace)
}
