package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
)

// Dispatcher runs handlers asynchronously with panic recovery and tracks
// them so in-flight work can be drained before shutdown.
type Dispatcher struct {
	wg sync.WaitGroup
}

// New creates a Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch executes a handler function asynchronously.
//
// The handler receives a new background context that preserves the logger
// from ctx but not its cancellation: cancelling the originating request must
// not abort a mirror push halfway through.
func (d *Dispatcher) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
		}
	}()
}

// Wait blocks until all dispatched handlers have finished or the context is
// done, whichever comes first.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newBackgroundContext creates a background context preserving the ctxlog
// logger from the original context.
func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
