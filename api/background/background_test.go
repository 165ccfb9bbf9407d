package background

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newBackground() *Background {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func TestShutdownWaitsForTasks(t *testing.T) {
	bg := newBackground()

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		if err := bg.Run(func() {
			time.Sleep(20 * time.Millisecond)
			done.Add(1)
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := bg.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if done.Load() != 5 {
		t.Fatalf("expected 5 finished tasks, got %d", done.Load())
	}

	if err := bg.Run(func() {}); !errors.Is(err, ErrShutdown) {
		t.Fatalf("expected ErrShutdown after shutdown, got %v", err)
	}
}

func TestShutdownTimeout(t *testing.T) {
	bg := newBackground()

	release := make(chan struct{})
	defer close(release)
	_ = bg.Run(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := bg.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPanicDoesNotEscape(t *testing.T) {
	bg := newBackground()
	_ = bg.Run(func() { panic("boom") })

	if err := bg.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}
