package background

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrShutdown = errors.New("background: shutting down")

// Background runs fire-and-forget tasks that must still finish before the
// process exits.
type Background struct {
	log    logrus.FieldLogger
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

// Run starts fn in its own goroutine. Panics are logged, not propagated.
func (b *Background) Run(fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrShutdown
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				b.log.WithField("trace", string(debug.Stack())).Errorf("background task panic: %v", rec)
			}
		}()

		fn()
	}()

	return nil
}

// Shutdown refuses new tasks and waits for running ones until ctx is done.
func (b *Background) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
