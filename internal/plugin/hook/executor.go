package hook

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// luaCall is one operation to run on the Lua goroutine.
type luaCall struct {
	fn func(L *lua.LState) error

	// result receives the outcome; nil for fire-and-forget calls.
	result chan error
}

// executor serializes all Lua operations through a single goroutine.
//
// gopher-lua's LState is not goroutine-safe, so every access to L goes
// through the queue.
type executor struct {
	L     *lua.LState
	queue chan *luaCall
	done  chan struct{}

	// mu orders sends against close(queue).
	mu     sync.RWMutex
	closed bool
}

func newExecutor(L *lua.LState, queueSize int) *executor {
	if queueSize <= 0 {
		queueSize = 64
	}
	e := &executor{
		L:     L,
		queue: make(chan *luaCall, queueSize),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

// run processes calls until the queue is closed and drained.
func (e *executor) run() {
	defer close(e.done)
	for call := range e.queue {
		err := e.executeCall(call)
		if call.result != nil {
			call.result <- err
		}
	}
}

// executeCall runs a single Lua operation with panic recovery.
func (e *executor) executeCall(call *luaCall) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return call.fn(e.L)
}

// execute runs fn on the Lua goroutine and waits for it.
func (e *executor) execute(ctx context.Context, fn func(L *lua.LState) error) error {
	call := &luaCall{fn: fn, result: make(chan error, 1)}

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrClosed
	}
	select {
	case e.queue <- call:
		e.mu.RUnlock()
	case <-ctx.Done():
		e.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-call.result:
		return err
	case <-ctx.Done():
		// The call still runs; only the wait is abandoned.
		return ctx.Err()
	}
}

// tryExecute queues fn without waiting. It reports false when the queue is
// full or the executor is closed.
func (e *executor) tryExecute(fn func(L *lua.LState) error) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return false
	}
	select {
	case e.queue <- &luaCall{fn: fn}:
		return true
	default:
		return false
	}
}

// close stops accepting calls. Queued calls still run; wait on done to
// know when the last one finished.
func (e *executor) close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		close(e.queue)
	}
}
