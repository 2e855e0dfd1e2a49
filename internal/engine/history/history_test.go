package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dshills/quill/internal/engine/content"
)

func c(s string) content.Content { return content.New(s) }

func TestNewSeedsOneEntry(t *testing.T) {
	h := New(c("seed"))

	if h.CanUndo() {
		t.Error("fresh history should not be undoable")
	}
	if h.CanRedo() {
		t.Error("fresh history should not be redoable")
	}
	if got := h.Current().String(); got != "seed" {
		t.Errorf("Current() = %q, want %q", got, "seed")
	}
	if len(h.UndoInfo()) != 1 {
		t.Errorf("undo stack size = %d, want 1", len(h.UndoInfo()))
	}
}

func TestUndoOnFreshHistoryIsNoop(t *testing.T) {
	h := New(c(""))

	got, ok := h.Undo()
	if ok {
		t.Fatal("Undo() on fresh history should report false")
	}
	if !got.IsEmpty() {
		t.Errorf("Undo() content = %q, want empty", got.String())
	}
	if h.Current().String() != "" {
		t.Error("Undo() on fresh history changed current state")
	}
}

func TestRedoOnEmptyRedoStackIsNoop(t *testing.T) {
	h := New(c(""))
	h.RecordEdit(c("a"))

	if _, ok := h.Redo(); ok {
		t.Fatal("Redo() with empty redo stack should report false")
	}
	if h.Current().String() != "a" {
		t.Error("Redo() no-op changed current state")
	}
}

func TestUndoRedoScenario(t *testing.T) {
	h := New(c(""))
	h.RecordEdit(c("hello"))
	h.RecordEdit(c("hello world"))

	steps := []struct {
		name   string
		op     func() (content.Content, bool)
		want   string
		wantOK bool
	}{
		{"undo", h.Undo, "hello", true},
		{"undo again", h.Undo, "", true},
		{"undo past seed", h.Undo, "", false},
		{"redo", h.Redo, "hello", true},
		{"redo again", h.Redo, "hello world", true},
		{"redo past end", h.Redo, "", false},
	}

	for _, step := range steps {
		got, ok := step.op()
		if ok != step.wantOK {
			t.Fatalf("%s: ok = %v, want %v", step.name, ok, step.wantOK)
		}
		if ok && got.String() != step.want {
			t.Fatalf("%s: content = %q, want %q", step.name, got.String(), step.want)
		}
	}
}

func TestUndoIsInverseOfEditRun(t *testing.T) {
	for n := 1; n <= 20; n++ {
		t.Run(fmt.Sprintf("%d edits", n), func(t *testing.T) {
			h := New(c("start"))
			for i := 0; i < n; i++ {
				h.RecordEdit(c(fmt.Sprintf("edit %d", i)))
			}

			var last content.Content
			for i := 0; i < n; i++ {
				got, ok := h.Undo()
				if !ok {
					t.Fatalf("undo %d reported false", i)
				}
				last = got
			}
			if last.String() != "start" {
				t.Errorf("after %d undos content = %q, want %q", n, last.String(), "start")
			}
			if h.CanUndo() {
				t.Error("should be back at the seed")
			}
		})
	}
}

func TestRecordEditClearsRedo(t *testing.T) {
	h := New(c(""))
	h.RecordEdit(c("a"))
	h.RecordEdit(c("ab"))
	h.Undo()

	if !h.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}

	h.RecordEdit(c("ax"))

	if h.CanRedo() {
		t.Error("RecordEdit should clear the redo stack")
	}
	if _, ok := h.Redo(); ok {
		t.Error("Redo() after a new edit should be a no-op")
	}
	if h.Current().String() != "ax" {
		t.Errorf("Current() = %q, want %q", h.Current().String(), "ax")
	}
}

func TestRedoRestoresUndoneContent(t *testing.T) {
	h := New(c(""))
	h.RecordEdit(c("one"))
	h.RecordEdit(c("two"))

	undone := h.Current()
	h.Undo()
	got, ok := h.Redo()
	if !ok {
		t.Fatal("Redo() reported false")
	}
	if !got.Equal(undone) {
		t.Errorf("Redo() = %q, want %q", got.String(), undone.String())
	}
}

func TestAmend(t *testing.T) {
	h := New(c(""))

	if h.Amend(c("x")) {
		t.Fatal("Amend() must not replace the seed")
	}
	if h.Current().String() != "" {
		t.Fatal("failed Amend() changed history")
	}

	h.RecordEdit(c("h"))
	if !h.Amend(c("he")) {
		t.Fatal("Amend() after an edit should succeed")
	}
	if !h.Amend(c("hel")) {
		t.Fatal("second Amend() should succeed")
	}

	if h.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", h.UndoCount())
	}
	got, _ := h.Undo()
	if got.String() != "" {
		t.Errorf("Undo() after amended burst = %q, want empty", got.String())
	}
	redo, _ := h.Redo()
	if redo.String() != "hel" {
		t.Errorf("Redo() = %q, want %q", redo.String(), "hel")
	}
}

func TestReset(t *testing.T) {
	h := New(c(""))
	h.RecordEdit(c("a"))
	h.RecordEdit(c("b"))
	h.Undo()

	h.Reset(c("loaded"))

	if h.CanUndo() || h.CanRedo() {
		t.Error("Reset() should leave a single seed entry")
	}
	if h.Current().String() != "loaded" {
		t.Errorf("Current() = %q, want %q", h.Current().String(), "loaded")
	}
}

func TestMaxEntries(t *testing.T) {
	h := New(c("0"), WithMaxEntries(3))
	for i := 1; i <= 5; i++ {
		h.RecordEdit(c(fmt.Sprint(i)))
	}

	if got := len(h.UndoInfo()); got != 3 {
		t.Fatalf("undo stack size = %d, want 3", got)
	}

	h.Undo()
	last, ok := h.Undo()
	if !ok || last.String() != "3" {
		t.Errorf("Undo() = %q, %v, want %q, true", last.String(), ok, "3")
	}
	if _, ok := h.Undo(); ok {
		t.Error("Undo() past the trimmed bottom should report false")
	}
	if h.Amend(c("x")) {
		t.Error("trimmed bottom entry should not be amendable")
	}
}

func TestSetMaxEntriesTrims(t *testing.T) {
	h := New(c(""))
	for i := 0; i < 10; i++ {
		h.RecordEdit(c(fmt.Sprint(i)))
	}

	h.SetMaxEntries(4)

	if h.MaxEntries() != 4 {
		t.Errorf("MaxEntries() = %d, want 4", h.MaxEntries())
	}
	if h.UndoCount() != 3 {
		t.Errorf("UndoCount() = %d, want 3", h.UndoCount())
	}

	h.SetMaxEntries(-1)
	if h.MaxEntries() != 0 {
		t.Errorf("negative max should mean unbounded, got %d", h.MaxEntries())
	}
}

func TestUnboundedByDefault(t *testing.T) {
	h := New(c(""))
	for i := 0; i < 5000; i++ {
		h.RecordEdit(c(fmt.Sprint(i)))
	}
	if h.UndoCount() != 5000 {
		t.Errorf("UndoCount() = %d, want 5000", h.UndoCount())
	}
}

func TestSnapshotsShareContent(t *testing.T) {
	big := c(string(make([]byte, 1<<20)))
	h := New(c(""))
	h.RecordEdit(big)

	if !h.Current().Equal(big) {
		t.Error("snapshot should hold the recorded content")
	}
	info := h.UndoInfo()
	if info[len(info)-1].Size != 1<<20 {
		t.Errorf("snapshot size = %d", info[len(info)-1].Size)
	}
}

func TestPeekRedo(t *testing.T) {
	h := New(c(""))
	if _, ok := h.PeekRedo(); ok {
		t.Error("PeekRedo() on empty redo stack should report false")
	}

	h.RecordEdit(c("abc"))
	h.Undo()

	info, ok := h.PeekRedo()
	if !ok {
		t.Fatal("PeekRedo() should report true after undo")
	}
	if info.Size != 3 {
		t.Errorf("PeekRedo().Size = %d, want 3", info.Size)
	}
	if info.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if h.RedoCount() != 1 || len(h.RedoInfo()) != 1 {
		t.Error("PeekRedo() should not change the redo stack")
	}
}

func TestPeekUndo(t *testing.T) {
	h := New(c("seed"))
	if _, ok := h.PeekUndo(); ok {
		t.Error("PeekUndo() at the seed should report false")
	}

	h.RecordEdit(c("hello"))
	info, ok := h.PeekUndo()
	if !ok || info.Size != 5 {
		t.Errorf("PeekUndo() = %+v, %v", info, ok)
	}
	if h.UndoCount() != 1 {
		t.Error("PeekUndo() should not change the undo stack")
	}
}

func TestConcurrentAccess(t *testing.T) {
	h := New(c(""))
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				switch j % 3 {
				case 0:
					h.RecordEdit(c(fmt.Sprint(n, j)))
				case 1:
					h.Undo()
				default:
					h.Redo()
				}
			}
		}(i)
	}
	wg.Wait()

	if len(h.UndoInfo()) < 1 {
		t.Error("undo stack must never become empty")
	}
}
