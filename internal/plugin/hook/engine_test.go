package hook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
)

type logRecorder struct {
	mu   sync.Mutex
	msgs []string
	errs []error
}

func (r *logRecorder) log(msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *logRecorder) fail(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *logRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func (r *logRecorder) failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *logRecorder) {
	t.Helper()
	rec := &logRecorder{}
	opts = append([]Option{WithLogFunc(rec.log), WithErrorHandler(rec.fail)}, opts...)
	e := NewEngine(opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		e.Close(ctx)
	})
	return e, rec
}

// flush waits until every event queued so far has been handled.
func flush(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.exec.execute(ctx, func(*lua.LState) error { return nil }); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestEngine_HandlerReceivesEvent(t *testing.T) {
	e, rec := newTestEngine(t)

	err := e.LoadString(t.Context(), "hooks.lua", `
quill.on("save", function(ev)
  quill.log(ev.event .. " " .. ev.path .. " " .. tostring(ev.dirty))
end)
quill.on("error", function(ev)
  quill.log(ev.kind .. ":" .. ev.category .. ":" .. ev.message)
end)
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !e.Fire(Event{Name: EventSave, Path: "/tmp/a.txt", Dirty: false}) {
		t.Fatal("Fire dropped the event")
	}
	e.Fire(Event{Name: EventError, Kind: "save", Category: "permission denied", Message: "save /x: permission denied"})
	flush(t, e)

	got := rec.messages()
	want := []string{
		"save /tmp/a.txt false",
		"save:permission denied:save /x: permission denied",
	}
	if len(got) != len(want) {
		t.Fatalf("messages = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if s := e.Stats(); s.Fired != 2 || s.Dropped != 0 || s.Failed != 0 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestEngine_MultipleHandlersRunInOrder(t *testing.T) {
	e, rec := newTestEngine(t)

	err := e.LoadString(t.Context(), "hooks.lua", `
quill.on("theme", function(ev) quill.log("first " .. ev.theme) end)
quill.on("theme", function(ev) quill.log("second " .. ev.theme) end)
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if n := e.HandlerCount(t.Context(), EventTheme); n != 2 {
		t.Errorf("HandlerCount = %d, want 2", n)
	}
	if n := e.HandlerCount(t.Context(), EventOpen); n != 0 {
		t.Errorf("HandlerCount(open) = %d, want 0", n)
	}

	e.Fire(Event{Name: EventTheme, Theme: "base16-ocean"})
	flush(t, e)

	got := strings.Join(rec.messages(), ",")
	if got != "first base16-ocean,second base16-ocean" {
		t.Errorf("messages = %q", got)
	}
}

func TestEngine_Sandbox(t *testing.T) {
	e, rec := newTestEngine(t)

	err := e.LoadString(t.Context(), "sandbox.lua", `
for _, name in ipairs({"io", "os", "debug", "package", "dofile", "loadfile", "load", "require"}) do
  if _G[name] ~= nil then quill.log("exposed " .. name) end
end
quill.log(string.upper("ok") .. " " .. tostring(math.floor(2.5)) .. " " .. table.concat({"a", "b"}, ""))
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	got := rec.messages()
	if len(got) != 1 || got[0] != "OK 2 ab" {
		t.Errorf("messages = %q", got)
	}
}

func TestEngine_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"syntax", "quill.on("},
		{"unknown event", `quill.on("close", function() end)`},
		{"runtime", `error("boom")`},
		{"missing require", `require("socket")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			err := e.LoadString(t.Context(), "bad.lua", tt.code)

			var se *ScriptError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ScriptError, got %T: %v", err, err)
			}
			if se.Script != "bad.lua" {
				t.Errorf("Script = %q", se.Script)
			}
		})
	}
}

func TestEngine_UnknownEventMessage(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.LoadString(t.Context(), "bad.lua", `quill.on("close", function() end)`)
	if err == nil || !strings.Contains(err.Error(), ErrUnknownEvent.Error()) {
		t.Errorf("error = %v, want it to mention %v", err, ErrUnknownEvent)
	}
}

func TestEngine_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.lua")
	if err := os.WriteFile(path, []byte(`quill.on("new", function() quill.log("fresh") end)`), 0o644); err != nil {
		t.Fatal(err)
	}

	e, rec := newTestEngine(t)
	if err := e.LoadFile(t.Context(), path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	e.Fire(Event{Name: EventNew})
	flush(t, e)

	if got := rec.messages(); len(got) != 1 || got[0] != "fresh" {
		t.Errorf("messages = %q", got)
	}

	err := e.LoadFile(t.Context(), filepath.Join(t.TempDir(), "missing.lua"))
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Errorf("missing script: got %T: %v", err, err)
	}
}

func TestEngine_HandlerErrorIsReported(t *testing.T) {
	e, rec := newTestEngine(t)

	err := e.LoadString(t.Context(), "hooks.lua", `
quill.on("open", function(ev) error("bad handler") end)
quill.on("open", function(ev) quill.log("still runs") end)
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	e.Fire(Event{Name: EventOpen, Path: "/a.txt"})
	flush(t, e)

	errs := rec.failures()
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one", errs)
	}
	var se *ScriptError
	if !errors.As(errs[0], &se) || se.Event != EventOpen || se.Script != "hooks.lua" {
		t.Errorf("error = %#v", errs[0])
	}
	if got := rec.messages(); len(got) != 1 || got[0] != "still runs" {
		t.Errorf("messages = %q", got)
	}
	if e.Stats().Failed != 1 {
		t.Errorf("Failed = %d", e.Stats().Failed)
	}
}

func TestEngine_HandlerTimeout(t *testing.T) {
	e, rec := newTestEngine(t, WithTimeout(50*time.Millisecond))

	err := e.LoadString(t.Context(), "hooks.lua", `
quill.on("save", function(ev) while true do end end)
quill.on("new", function(ev) quill.log("after") end)
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	start := time.Now()
	e.Fire(Event{Name: EventSave})
	e.Fire(Event{Name: EventNew})
	flush(t, e)

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("runaway handler held the worker for %v", elapsed)
	}
	if len(rec.failures()) != 1 {
		t.Errorf("errors = %v, want the timeout", rec.failures())
	}
	if got := rec.messages(); len(got) != 1 || got[0] != "after" {
		t.Errorf("later events must still run, messages = %q", got)
	}
}

func TestEngine_FireDropsWhenFull(t *testing.T) {
	e, _ := newTestEngine(t, WithQueueSize(1))

	// Park the worker so the queue cannot drain.
	release := make(chan struct{})
	parked := make(chan struct{})
	if !e.exec.tryExecute(func(*lua.LState) error {
		close(parked)
		<-release
		return nil
	}) {
		t.Fatal("could not park the worker")
	}
	<-parked

	if !e.Fire(Event{Name: EventNew}) {
		t.Fatal("first event should fit in the queue")
	}
	if e.Fire(Event{Name: EventNew}) {
		t.Error("second event should be dropped")
	}
	close(release)
	flush(t, e)

	if s := e.Stats(); s.Fired != 1 || s.Dropped != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestEngine_FireUnknownEvent(t *testing.T) {
	e, _ := newTestEngine(t)
	if e.Fire(Event{Name: "close"}) {
		t.Error("unknown events are not queued")
	}
	if s := e.Stats(); s.Fired != 0 || s.Dropped != 0 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestEngine_Close(t *testing.T) {
	e, rec := newTestEngine(t)
	if err := e.LoadString(t.Context(), "hooks.lua", `quill.on("new", function() quill.log("ran") end)`); err != nil {
		t.Fatal(err)
	}

	e.Fire(Event{Name: EventNew})
	if err := e.Close(t.Context()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := rec.messages(); len(got) != 1 {
		t.Errorf("queued events run before Close returns, messages = %q", got)
	}

	if e.Fire(Event{Name: EventNew}) {
		t.Error("Fire after Close should report a drop")
	}
	if err := e.LoadString(t.Context(), "late.lua", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("LoadString after Close = %v, want ErrClosed", err)
	}
	if err := e.Close(t.Context()); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestEngine_CloseAbortsRunawayHandler(t *testing.T) {
	e, _ := newTestEngine(t, WithTimeout(time.Minute))
	if err := e.LoadString(t.Context(), "hooks.lua", `quill.on("save", function() while true do end end)`); err != nil {
		t.Fatal(err)
	}
	e.Fire(Event{Name: EventSave})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := e.Close(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Close = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Close took %v", elapsed)
	}
}
