package hook

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Event names a script can subscribe to.
const (
	EventNew   = "new"
	EventOpen  = "open"
	EventSave  = "save"
	EventError = "error"
	EventTheme = "theme"
)

var knownEvents = map[string]bool{
	EventNew:   true,
	EventOpen:  true,
	EventSave:  true,
	EventError: true,
	EventTheme: true,
}

// DefaultTimeout bounds each handler call unless WithTimeout says otherwise.
const DefaultTimeout = time.Second

// Event is the payload handed to handlers.
type Event struct {
	Name     string
	Path     string
	Dirty    bool
	Kind     string
	Category string
	Message  string
	Theme    string
}

// Stats counts events since the engine was created.
type Stats struct {
	Fired   uint64
	Dropped uint64
	Failed  uint64
}

// Engine owns one sandboxed Lua state and the handlers registered in it.
type Engine struct {
	exec *executor

	timeout   time.Duration
	queueSize int
	logf      func(msg string)
	onError   func(err error)

	// ctx bounds every handler; cancelling it aborts running Lua code.
	ctx    context.Context
	cancel context.CancelFunc

	// handlers and script are touched only on the Lua goroutine.
	handlers map[string][]*lua.LFunction
	script   string

	fired   atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64

	closeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each handler call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithQueueSize sets how many events may wait before Fire drops them.
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// WithLogFunc receives messages passed to quill.log.
func WithLogFunc(fn func(msg string)) Option {
	return func(e *Engine) {
		e.logf = fn
	}
}

// WithErrorHandler receives handler failures. It is called on the Lua
// goroutine and must not block.
func WithErrorHandler(fn func(err error)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// NewEngine creates an engine with no script loaded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:   DefaultTimeout,
		queueSize: 64,
		logf:      func(string) {},
		onError:   func(error) {},
		handlers:  make(map[string][]*lua.LFunction),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	L := newSandboxedState()
	L.SetGlobal("quill", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"on":  e.luaOn,
		"log": e.luaLog,
	}))
	e.exec = newExecutor(L, e.queueSize)
	return e
}

// LoadFile runs the script at path, which registers its handlers.
func (e *Engine) LoadFile(ctx context.Context, path string) error {
	return e.load(ctx, path, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// LoadString runs code as a script named name.
func (e *Engine) LoadString(ctx context.Context, name, code string) error {
	return e.load(ctx, name, func(L *lua.LState) error {
		return L.DoString(code)
	})
}

func (e *Engine) load(ctx context.Context, name string, run func(L *lua.LState) error) error {
	err := e.exec.execute(ctx, func(L *lua.LState) error {
		e.script = name
		callCtx, cancel := context.WithTimeout(e.ctx, e.timeout)
		defer cancel()
		L.SetContext(callCtx)
		defer L.RemoveContext()
		return run(L)
	})
	if err != nil {
		return &ScriptError{Script: name, Err: err}
	}
	return nil
}

// Fire queues ev for its handlers. It never blocks and reports false when
// the event was dropped.
func (e *Engine) Fire(ev Event) bool {
	if !knownEvents[ev.Name] {
		return false
	}
	if !e.exec.tryExecute(func(L *lua.LState) error {
		e.dispatch(L, ev)
		return nil
	}) {
		e.dropped.Add(1)
		return false
	}
	e.fired.Add(1)
	return true
}

// HandlerCount returns the number of handlers registered for event.
func (e *Engine) HandlerCount(ctx context.Context, event string) int {
	n := 0
	e.exec.execute(ctx, func(*lua.LState) error {
		n = len(e.handlers[event])
		return nil
	})
	return n
}

// Stats returns event counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Fired:   e.fired.Load(),
		Dropped: e.dropped.Load(),
		Failed:  e.failed.Load(),
	}
}

// Close stops accepting events and lets queued ones run. When ctx ends
// first, the running handler is aborted and the rest fail immediately.
func (e *Engine) Close(ctx context.Context) error {
	var err error
	e.closeOnce.Do(func() {
		e.exec.close()
		select {
		case <-e.exec.done:
		case <-ctx.Done():
			err = ctx.Err()
			e.cancel()
			<-e.exec.done
		}
		e.cancel()
		e.exec.L.Close()
	})
	return err
}

// dispatch runs every handler for ev on the Lua goroutine.
func (e *Engine) dispatch(L *lua.LState, ev Event) {
	for _, fn := range e.handlers[ev.Name] {
		if err := e.call(L, fn, ev); err != nil {
			e.failed.Add(1)
			e.onError(&ScriptError{Script: e.script, Event: ev.Name, Err: err})
		}
	}
}

func (e *Engine) call(L *lua.LState, fn *lua.LFunction, ev Event) error {
	ctx, cancel := context.WithTimeout(e.ctx, e.timeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, eventTable(L, ev))
}

func eventTable(L *lua.LState, ev Event) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("event", lua.LString(ev.Name))
	t.RawSetString("path", lua.LString(ev.Path))
	t.RawSetString("dirty", lua.LBool(ev.Dirty))
	t.RawSetString("kind", lua.LString(ev.Kind))
	t.RawSetString("category", lua.LString(ev.Category))
	t.RawSetString("message", lua.LString(ev.Message))
	t.RawSetString("theme", lua.LString(ev.Theme))
	return t
}

// luaOn implements quill.on(event, fn).
func (e *Engine) luaOn(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if !knownEvents[name] {
		L.ArgError(1, fmt.Sprintf("%v %q", ErrUnknownEvent, name))
		return 0
	}
	e.handlers[name] = append(e.handlers[name], fn)
	return 0
}

// luaLog implements quill.log(msg).
func (e *Engine) luaLog(L *lua.LState) int {
	e.logf(L.ToStringMeta(L.Get(1)).String())
	return 0
}
