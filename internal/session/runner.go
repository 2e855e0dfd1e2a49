package session

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Observer is called with every transition, on the runner goroutine.
// Observers must not block and must not dispatch synchronously.
type Observer func(Transition)

// PanicHandler is called when an effect or observer panics.
type PanicHandler func(source string, value any, stack []byte)

// Runner hosts a Controller. Intents are applied one at a time on a single
// goroutine; effects run on their own goroutines and their results re-enter
// the loop in completion order.
type Runner struct {
	ctrl *Controller

	queueSize    int
	panicHandler PanicHandler

	mu        sync.Mutex
	observers []Observer

	intents  chan Intent
	results  chan Intent
	updates  chan State
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// effectCtx is cancelled on Close so open prompts return.
	effectCtx    context.Context
	cancelEffect context.CancelFunc

	started  atomic.Bool
	inflight int // owned by the loop goroutine
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithQueueSize sets how many dispatched intents may wait before Dispatch
// blocks.
func WithQueueSize(size int) RunnerOption {
	return func(r *Runner) {
		if size > 0 {
			r.queueSize = size
		}
	}
}

// WithPanicHandler sets the handler invoked when an effect or observer
// panics. The runner recovers either way.
func WithPanicHandler(h PanicHandler) RunnerOption {
	return func(r *Runner) {
		r.panicHandler = h
	}
}

// NewRunner creates a runner for ctrl. Call Start before dispatching.
func NewRunner(ctrl *Controller, opts ...RunnerOption) *Runner {
	r := &Runner{
		ctrl:      ctrl,
		queueSize: 64,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.intents = make(chan Intent, r.queueSize)
	r.results = make(chan Intent)
	r.updates = make(chan State, 1)
	r.stopping = make(chan struct{})
	r.done = make(chan struct{})
	r.effectCtx, r.cancelEffect = context.WithCancel(context.Background())
	return r
}

// Controller returns the hosted controller.
func (r *Runner) Controller() *Controller {
	return r.ctrl
}

// OnTransition registers an observer. Observers added after Start only see
// later transitions.
func (r *Runner) OnTransition(obs Observer) {
	if obs == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, obs)
}

// Updates returns a channel carrying the latest state after each change.
// Only the newest undelivered state is kept. The channel is closed when the
// runner stops.
func (r *Runner) Updates() <-chan State {
	return r.updates
}

// State returns the current session state.
func (r *Runner) State() State {
	return r.ctrl.State()
}

// Start launches the loop goroutine and publishes the initial state.
func (r *Runner) Start() error {
	select {
	case <-r.stopping:
		return ErrNotRunning
	default:
	}
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	r.publish(r.ctrl.State())
	go r.loop()
	return nil
}

// Dispatch queues in for the loop. It blocks only while the queue is full.
func (r *Runner) Dispatch(in Intent) error {
	if in == nil {
		return ErrNilIntent
	}
	if !r.started.Load() {
		return ErrNotRunning
	}
	select {
	case <-r.stopping:
		return ErrNotRunning
	default:
	}
	select {
	case r.intents <- in:
		return nil
	case <-r.stopping:
		return ErrNotRunning
	}
}

// Close stops accepting intents, cancels prompts still waiting for the
// user, and waits until every started effect has reported back and been
// applied. Intents dispatched concurrently with Close may be dropped.
func (r *Runner) Close(ctx context.Context) error {
	r.stopOnce.Do(func() {
		close(r.stopping)
		r.cancelEffect()
	})
	if !r.started.Load() {
		return nil
	}

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) loop() {
	defer close(r.done)
	defer close(r.updates)

	for {
		select {
		case in := <-r.intents:
			r.apply(in)
		case res := <-r.results:
			r.inflight--
			r.apply(res)
		case <-r.stopping:
			r.drain()
			return
		}
	}
}

// drain applies queued intents, then waits for in-flight effects.
func (r *Runner) drain() {
	for len(r.intents) > 0 {
		r.apply(<-r.intents)
	}
	for r.inflight > 0 {
		res := <-r.results
		r.inflight--
		r.apply(res)
	}
}

func (r *Runner) apply(in Intent) {
	t := r.ctrl.Apply(in)

	for _, e := range t.Effects {
		r.inflight++
		go func(e Effect) {
			r.results <- r.runEffect(e)
		}(e)
	}

	r.notify(t)
	if t.Changed() {
		r.publish(t.After)
	}
}

// runEffect runs e, converting a panic into a failed result.
func (r *Runner) runEffect(e Effect) (result Intent) {
	defer func() {
		if v := recover(); v != nil {
			r.handlePanic("effect "+e.Kind.String(), v)
			result = e.Failed(fmt.Errorf("effect %s panicked: %v", e.Kind, v))
		}
	}()
	return e.Run(r.effectCtx)
}

func (r *Runner) notify(t Transition) {
	r.mu.Lock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, obs := range observers {
		r.callObserver(obs, t)
	}
}

func (r *Runner) callObserver(obs Observer, t Transition) {
	defer func() {
		if v := recover(); v != nil {
			r.handlePanic("observer", v)
		}
	}()
	obs(t)
}

func (r *Runner) handlePanic(source string, v any) {
	if r.panicHandler == nil {
		return
	}
	stack := debug.Stack()
	// A panicking handler must not take the loop down.
	defer func() { _ = recover() }()
	r.panicHandler(source, v, stack)
}

// publish replaces any undelivered state with s.
func (r *Runner) publish(s State) {
	select {
	case <-r.updates:
	default:
	}
	select {
	case r.updates <- s:
	default:
	}
}
