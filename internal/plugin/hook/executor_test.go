package hook

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func newTestExecutor(t *testing.T, queueSize int) *executor {
	t.Helper()
	L := newSandboxedState()
	e := newExecutor(L, queueSize)
	t.Cleanup(func() {
		e.close()
		<-e.done
		L.Close()
	})
	return e
}

func TestExecutor_Execute(t *testing.T) {
	e := newTestExecutor(t, 0)

	err := e.execute(t.Context(), func(L *lua.LState) error {
		return L.DoString(`x = 40 + 2`)
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	var got lua.LValue
	e.execute(t.Context(), func(L *lua.LState) error {
		got = L.GetGlobal("x")
		return nil
	})
	if got != lua.LNumber(42) {
		t.Errorf("x = %v, want 42", got)
	}
}

func TestExecutor_ReturnsError(t *testing.T) {
	e := newTestExecutor(t, 0)
	want := errors.New("boom")
	if err := e.execute(t.Context(), func(*lua.LState) error { return want }); err != want {
		t.Errorf("error = %v, want %v", err, want)
	}
}

func TestExecutor_RecoversPanic(t *testing.T) {
	e := newTestExecutor(t, 0)

	err := e.execute(t.Context(), func(*lua.LState) error { panic("kaboom") })
	if err == nil || err.Error() != "lua panic: kaboom" {
		t.Errorf("error = %v", err)
	}

	if err := e.execute(t.Context(), func(*lua.LState) error { return nil }); err != nil {
		t.Errorf("worker died after panic: %v", err)
	}
}

func TestExecutor_Serializes(t *testing.T) {
	e := newTestExecutor(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.execute(context.Background(), func(L *lua.LState) error {
				return L.DoString(`counter = (counter or 0) + 1`)
			})
		}()
	}
	wg.Wait()

	var n lua.LValue
	e.execute(t.Context(), func(L *lua.LState) error {
		n = L.GetGlobal("counter")
		return nil
	})
	if n != lua.LNumber(50) {
		t.Errorf("counter = %v, want 50", n)
	}
}

func TestExecutor_ContextCancelledWhileWaiting(t *testing.T) {
	e := newTestExecutor(t, 0)

	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.execute(ctx, func(*lua.LState) error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestExecutor_Closed(t *testing.T) {
	e := newTestExecutor(t, 0)
	e.close()
	e.close()

	if err := e.execute(t.Context(), func(*lua.LState) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("execute after close = %v, want ErrClosed", err)
	}
	if e.tryExecute(func(*lua.LState) error { return nil }) {
		t.Error("tryExecute after close should fail")
	}

	select {
	case <-e.done:
	case <-time.After(time.Second):
		t.Error("worker did not exit")
	}
}
