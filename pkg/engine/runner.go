package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/render"
)

// ErrRunning is returned by Run when the runner loop is already active.
var ErrRunning = errors.New("runner already running")

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInterval overrides the engine's FrameInterval.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithOnFrame registers a callback for every newly published frame. It runs
// on the runner goroutine.
func WithOnFrame(fn func(*render.Frame)) RunnerOption {
	return func(r *Runner) { r.onFrame = fn }
}

// Runner drives an Engine from a ticker.
type Runner struct {
	engine   *Engine
	interval time.Duration
	onFrame  func(*render.Frame)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a runner for e.
func NewRunner(e *Engine, opts ...RunnerOption) *Runner {
	r := &Runner{engine: e, interval: e.Config().FrameInterval}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

// Run ticks the engine until ctx is cancelled or Stop is called. A stop is
// not an error.
func (r *Runner) Run(ctx context.Context) error {
	ctx, done, err := r.begin(ctx)
	if err != nil {
		return err
	}
	r.loop(ctx, done)
	return nil
}

// Start runs the loop on a new goroutine. The runner counts as running
// when Start returns, so an immediate Stop is honoured.
func (r *Runner) Start(ctx context.Context) error {
	ctx, done, err := r.begin(ctx)
	if err != nil {
		return err
	}
	go r.loop(ctx, done)
	return nil
}

func (r *Runner) begin(parent context.Context) (context.Context, chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return nil, nil, ErrRunning
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel, r.done = cancel, make(chan struct{})
	return ctx, r.done, nil
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.cancel()
		r.cancel, r.done = nil, nil
		r.mu.Unlock()
		close(done)
		debug.Log("runner: stopped")
	}()

	debug.Log("runner: started (interval %v)", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var last *render.Frame
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// Both cases may be ready at once; a cancelled loop must not tick.
		if ctx.Err() != nil {
			return
		}
		r.engine.Tick()
		if f := r.engine.Frame(); f != last {
			last = f
			if r.onFrame != nil {
				r.onFrame(f)
			}
		}
	}
}

// Stop cancels the loop and waits for it to exit. After Stop returns no
// further ticks or frame callbacks happen. Stop is safe to call when the
// runner is idle.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
